package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
)

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// IsJSONOutput reports whether --json was requested.
func IsJSONOutput() bool {
	return jsonOutput
}

// IsJSONLOutput reports whether --jsonl was requested.
func IsJSONLOutput() bool {
	return jsonlOutput
}

// WriteOutput encodes v as indented JSON, or as one line per element with
// --jsonl.
func WriteOutput(out io.Writer, v any) error {
	if IsJSONLOutput() {
		return writeJSONLines(out, v)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONLines(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return enc.Encode(v)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := enc.Encode(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func colorize(text, color string) string {
	if color == "" || !colorEnabled() {
		return text
	}
	return color + text + colorReset
}

func colorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return hasTTY()
}

func printKV(out io.Writer, key string, value any) {
	fmt.Fprintf(out, "  %-9s %v\n", key+":", value)
}
