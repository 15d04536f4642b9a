package cli

import (
	"encoding/json"
	"errors"
	"fmt"
)

// outputError normalizes error emission across commands so json mode
// always gets a machine-readable failure.
func outputError(globals *Globals, code, message string) error {
	if globals != nil && globals.Format == "json" {
		b, _ := json.Marshal(map[string]string{
			"type":    "error",
			"code":    code,
			"message": message,
		})
		fmt.Fprintln(globals.Stdout, string(b))
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s\n", code, message)
	}
	return errors.New(message)
}
