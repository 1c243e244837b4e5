package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-metronome/click"
	"go-metronome/midi"
)

func main() {
	defer gomidi.CloseDriver()

	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "click":
		if len(os.Args) < 3 {
			usage()
			return
		}
		channel := 10
		if len(os.Args) > 3 {
			if n, err := strconv.Atoi(os.Args[3]); err == nil {
				channel = n
			}
		}
		sendClicks(os.Args[2], uint8(channel))
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Port Test")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                    - List all MIDI ports")
	fmt.Println("  click <port> [channel]  - Send one accent and one regular click")
}

func listPorts() {
	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := midi.ListPorts(context.Background())
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}

	fmt.Println("=== MIDI Input Ports ===")
	for i, name := range ports.In {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range ports.Out {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

func sendClicks(port string, channel uint8) {
	out := midi.NewOutput(port, channel)
	if err := out.Start(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	length := 100 * time.Millisecond
	fmt.Printf("Accent  (%s) on %s\n", midi.NoteName(midi.AccentNote), port)
	out.Play(click.Accent, click.AccentVelocity, length)
	time.Sleep(500 * time.Millisecond)

	fmt.Printf("Regular (%s) on %s\n", midi.NoteName(midi.RegularNote), port)
	out.Play(click.Regular, click.RegularVelocity, length)
	time.Sleep(500 * time.Millisecond)
}
