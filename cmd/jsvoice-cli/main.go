// Command jsvoice-cli is a line-oriented REPL for pushing control messages
// into a running Synth interactively: a thin stand-in for the real
// MIDI/host front-end, which is out of scope for this module.
//
// Commands:
//
//	set <PARAM> <ratio>              queue a SET_PARAM message
//	assign <PARAM> macro <n>         bind PARAM to macro n (1-30)
//	assign <PARAM> lfo <n>           bind PARAM to LFO n (1-8)
//	assign <PARAM> none              detach every source from PARAM
//	noteon <channel> <note> <vel>    trigger a note
//	noteoff <channel> <note>         release a note
//	clear                            reset the voice pool
//	list                             print every registered param name
//	stats                            print render-path CPU load (debug builds only)
//	quit                             exit
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
	"github.com/attilammagyar/js80p-sub000/pkg/midi"
	"github.com/attilammagyar/js80p-sub000/pkg/synth"
)

func main() {
	s := synth.New(44100.0, 16)

	fd := int(os.Stdin.Fd())
	rawOK := term.IsTerminal(fd)

	var oldState *term.State
	if rawOK {
		st, err := term.MakeRaw(fd)
		if err != nil {
			rawOK = false
		} else {
			oldState = st
		}
	}
	if rawOK {
		defer term.Restore(fd, oldState)
	}

	reader := bufio.NewReader(os.Stdin)
	writer := os.Stdout

	fmt.Fprintln(writer, "jsvoice-cli - type 'quit' to exit")
	var round signal.Round = 1

	for {
		fmt.Fprint(writer, "> ")
		line, err := readLine(reader, rawOK, writer)
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		if err := dispatch(s, line); err != nil {
			fmt.Fprintf(writer, "error: %v\r\n", err)
		}

		s.GenerateSamples(round, 1)
		round++
	}
}

// readLine reads one line of input, echoing characters itself when the
// terminal is in raw mode (the OS no longer echoes for us there).
func readLine(r *bufio.Reader, raw bool, w *os.File) (string, error) {
	if !raw {
		return r.ReadString('\n')
	}

	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			return sb.String(), err
		}
		if b == '\r' || b == '\n' {
			fmt.Fprint(w, "\r\n")
			return sb.String(), nil
		}
		if b == 0x7f || b == 0x08 {
			if sb.Len() > 0 {
				s := sb.String()
				sb.Reset()
				sb.WriteString(s[:len(s)-1])
				fmt.Fprint(w, "\b \b")
			}
			continue
		}
		if b == 3 { // Ctrl-C
			return "", fmt.Errorf("interrupted")
		}
		sb.WriteByte(b)
		fmt.Fprintf(w, "%c", b)
	}
}

func dispatch(s *synth.Synth, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "set":
		if len(fields) != 3 {
			return fmt.Errorf("usage: set <PARAM> <ratio>")
		}
		ratio, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return err
		}
		s.PushMessage(synth.ControlMessage{
			Type:      synth.SetParam,
			ParamName: fields[1],
			Number:    ratio,
		})
	case "assign":
		if len(fields) < 3 {
			return fmt.Errorf("usage: assign <PARAM> <macro|lfo|none> [n]")
		}
		id, err := parseControllerID(fields[2:])
		if err != nil {
			return err
		}
		s.PushMessage(synth.ControlMessage{
			Type:       synth.AssignController,
			ParamName:  fields[1],
			Controller: id,
		})
	case "noteon":
		if len(fields) != 4 {
			return fmt.Errorf("usage: noteon <channel> <note> <velocity>")
		}
		ch, note, vel, err := parseNote(fields[1], fields[2], fields[3])
		if err != nil {
			return err
		}
		s.ScheduleMidiEvent(midi.NoteOnEvent{
			BaseEvent:  midi.BaseEvent{EventChannel: ch, Offset: 0},
			NoteNumber: note,
			Velocity:   vel,
		})
	case "noteoff":
		if len(fields) != 3 {
			return fmt.Errorf("usage: noteoff <channel> <note>")
		}
		ch, note, _, err := parseNote(fields[1], fields[2], "0")
		if err != nil {
			return err
		}
		s.ScheduleMidiEvent(midi.NoteOffEvent{
			BaseEvent:  midi.BaseEvent{EventChannel: ch, Offset: 0},
			NoteNumber: note,
		})
	case "clear":
		s.PushMessage(synth.ControlMessage{Type: synth.Clear})
	case "list":
		for _, p := range s.Registry().All() {
			fmt.Printf("%s = %v\r\n", p.Name, p.Plain())
		}
	case "stats":
		fmt.Print(strings.ReplaceAll(s.RenderStats(), "\n", "\r\n"))
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}

	return nil
}

func parseControllerID(fields []string) (synth.ControllerID, error) {
	switch fields[0] {
	case "none":
		return synth.ControllerID{Kind: synth.ControllerNone}, nil
	case "macro":
		if len(fields) != 2 {
			return synth.ControllerID{}, fmt.Errorf("usage: assign <PARAM> macro <n>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return synth.ControllerID{}, err
		}
		return synth.ControllerID{Kind: synth.ControllerMacro, Index: n - 1}, nil
	case "lfo":
		if len(fields) != 2 {
			return synth.ControllerID{}, fmt.Errorf("usage: assign <PARAM> lfo <n>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return synth.ControllerID{}, err
		}
		return synth.ControllerID{Kind: synth.ControllerLFO, Index: n - 1}, nil
	default:
		return synth.ControllerID{}, fmt.Errorf("unknown controller kind %q", fields[0])
	}
}

func parseNote(chStr, noteStr, velStr string) (ch, note, vel uint8, err error) {
	chN, err := strconv.Atoi(chStr)
	if err != nil {
		return 0, 0, 0, err
	}
	noteN, err := strconv.Atoi(noteStr)
	if err != nil {
		return 0, 0, 0, err
	}
	velN, err := strconv.Atoi(velStr)
	if err != nil {
		return 0, 0, 0, err
	}
	return uint8(chN), uint8(noteN), uint8(velN), nil
}
