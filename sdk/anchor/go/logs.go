package anchor

import (
	"encoding/base64"
	"strings"

	"github.com/gagliardetto/solana-go"
)

const (
	programLogPrefix  = "Program "
	programDataPrefix = "Program data: "
	programLogLine    = "Program log: "
)

// programDataPayloads returns the decoded "Program data:" payloads that
// program emitted while it was the innermost executing program. The stack is
// tracked from "invoke", "success" and "failed" lines so events logged by a
// program it calls, or by a program calling it, are excluded.
func programDataPayloads(program solana.PublicKey, logs []string) (payloads [][]byte, malformed int) {
	self := program.String()
	var stack []string
	for _, line := range logs {
		switch {
		case strings.HasPrefix(line, programDataPrefix):
			if len(stack) == 0 || stack[len(stack)-1] != self {
				continue
			}
			raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(strings.TrimPrefix(line, programDataPrefix)))
			if err != nil {
				malformed++
				continue
			}
			payloads = append(payloads, raw)
		case strings.HasPrefix(line, programLogLine):
			continue
		case strings.HasPrefix(line, programLogPrefix):
			fields := strings.Fields(strings.TrimPrefix(line, programLogPrefix))
			if len(fields) < 2 {
				continue
			}
			id, verb := fields[0], fields[1]
			switch {
			case verb == "invoke":
				stack = append(stack, id)
			case verb == "success" || strings.HasPrefix(verb, "failed"):
				if len(stack) > 0 && stack[len(stack)-1] == id {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}
	return payloads, malformed
}
