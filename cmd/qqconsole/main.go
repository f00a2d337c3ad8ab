// Command qqconsole is a local console client for walking through the six
// rooms without a browser. Useful for tuning feedback text and debugging
// room parameters.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gookit/color"

	"github.com/quantumquest/quantum-quest-go/internal/engine"
	"github.com/quantumquest/quantum-quest-go/internal/rooms"
)

var (
	styleTitle   = color.Style{color.FgCyan, color.OpBold}
	styleSuccess = color.Style{color.FgGreen, color.OpBold}
	styleFailure = color.Style{color.FgRed, color.OpBold}
	styleHint    = color.Style{color.FgYellow}
	styleSubtle  = color.Style{color.FgGray}
)

func main() {
	seed := flag.String("seed", "console-session", "session seed for puzzle parameters")
	flag.Parse()

	manager := rooms.NewManager(engine.NewFactory(*seed))

	styleTitle.Println("Quantum Quest console")
	styleSubtle.Println(`commands: rooms, enter <room>, do <action> [k=v ...], hint, state, reset, quit`)

	var current rooms.RoomID
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s> ", current)
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return
		case "rooms":
			for _, info := range manager.Rooms() {
				mark := " "
				if info.Complete {
					mark = styleSuccess.Sprint("*")
				}
				fmt.Printf(" %s %-22s %-28s %3.0f%%\n", mark, info.ID, info.Name, info.Progress*100)
			}
		case "enter":
			if len(fields) < 2 {
				styleFailure.Println("usage: enter <room>")
				continue
			}
			id := rooms.RoomID(fields[1])
			if !id.Valid() {
				styleFailure.Printf("unknown room %q\n", fields[1])
				continue
			}
			current = id
			intro, _ := manager.RoomIntroduction(id)
			styleTitle.Println(intro)
			for i, step := range manager.RoomInstructions(id) {
				fmt.Printf("  %d. %s\n", i+1, step)
			}
		case "do":
			if current == "" {
				styleFailure.Println("enter a room first")
				continue
			}
			if len(fields) < 2 {
				styleFailure.Println("usage: do <action> [k=v ...]")
				continue
			}
			result := manager.ValidateRoomAction(current, fields[1], parsePayload(fields[2:]))
			printResult(result)
		case "hint":
			if current == "" {
				styleFailure.Println("enter a room first")
				continue
			}
			hint := manager.RoomHint(current)
			styleHint.Printf("[%s] %s\n", hint.Tier, hint.Text)
		case "state":
			if current == "" {
				styleFailure.Println("enter a room first")
				continue
			}
			state := manager.RoomState(current)
			fmt.Printf("step %d/%d, mistakes %d, concepts %v\n",
				state.CurrentStep, state.MaxSteps, state.MistakeCount, state.ConceptsLearned)
		case "reset":
			if current == "" {
				styleFailure.Println("enter a room first")
				continue
			}
			manager.ResetRoom(current)
			styleSubtle.Println("room reset")
		default:
			styleFailure.Printf("unknown command %q\n", fields[0])
		}
	}
}

func printResult(result *rooms.InteractionResult) {
	if result.Success {
		styleSuccess.Println("OK " + result.ConceptValidation.Feedback)
	} else {
		styleFailure.Println("NO " + result.ConceptValidation.Feedback)
		if result.ConceptValidation.Hint != "" {
			styleHint.Println("   " + result.ConceptValidation.Hint)
		}
	}
	if result.ConceptValidation.EducationalContent != "" {
		styleSubtle.Println("   " + result.ConceptValidation.EducationalContent)
	}
	if result.NextStep != "" {
		fmt.Println("next: " + result.NextStep)
	}
	if result.RoomComplete {
		styleSuccess.Println("ROOM COMPLETE")
	}
}

// parsePayload turns k=v arguments into an action payload, guessing the
// obvious JSON types.
func parsePayload(args []string) map[string]any {
	if len(args) == 0 {
		return nil
	}
	payload := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok {
			continue
		}
		switch {
		case raw == "true" || raw == "false":
			payload[key] = raw == "true"
		default:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				payload[key] = f
			} else {
				payload[key] = raw
			}
		}
	}
	return payload
}
