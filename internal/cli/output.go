package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/gitdup/internal/model"
)

// printResult outputs the result in the format selected by --output.
func printResult(w io.Writer, result *model.Result) error {
	switch outputFormat {
	case "json":
		return printResultJSON(w, result)
	case "yaml":
		return printResultYAML(w, result)
	default:
		printResultText(w, result)
		return nil
	}
}

// printResultJSON outputs the result as indented JSON.
func printResultJSON(w io.Writer, result *model.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to encode result", err)
	}
	_, _ = fmt.Fprintln(w, string(data))
	return nil
}

func printResultYAML(w io.Writer, result *model.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to encode result", err)
	}
	return enc.Close()
}

// printResultText outputs the result as human-readable text.
func printResultText(w io.Writer, result *model.Result) {
	_, _ = fmt.Fprintf(w, "Duplicated %s\n", result.Source)
	_, _ = fmt.Fprintf(w, "  Path:        %s\n", result.Destination)
	if result.CheckedOut != "" {
		_, _ = fmt.Fprintf(w, "  Checked out: %s\n", result.CheckedOut)
	}
	if result.PackageManager != "" {
		_, _ = fmt.Fprintf(w, "  Installed:   %s\n", result.PackageManager)
	}
}
