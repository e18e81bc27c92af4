package main

import (
	"errors"
	"fmt"
	"strings"

	"discdb/internal/contribution"
	"discdb/internal/services"
)

// describeError turns a command failure into a message for the terminal.
// Invalid references and missing contributions get distinct wording.
func describeError(err error) string {
	if err == nil {
		return ""
	}
	switch services.KindOf(err) {
	case services.KindCodec:
		// Codec errors already read "invalid reference".
		return err.Error()
	case services.KindNotFound:
		return fmt.Sprintf("not found: %v", err)
	case services.KindFingerprintConflict:
		return fmt.Sprintf("%v\nre-run with --force to replace the recorded fingerprint", err)
	case services.KindStateTransition:
		var refused *contribution.StateTransitionError
		if errors.As(err, &refused) && len(refused.Messages) > 0 {
			var b strings.Builder
			fmt.Fprintf(&b, "cannot %s: %s", refused.Action, refused.Reason)
			for _, msg := range refused.Messages {
				b.WriteString("\n  - ")
				b.WriteString(msg)
			}
			return b.String()
		}
		return err.Error()
	default:
		return err.Error()
	}
}

// exitCode maps failures users can fix to 2 and everything else to 1.
func exitCode(err error) int {
	if services.Recoverable(err) || services.KindOf(err) == services.KindCodec {
		return 2
	}
	return 1
}
