package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/pterm/pterm"
)

// Renderer writes reports, errors and messages in one format
type Renderer interface {
	RenderReport(r *Report) error
	RenderError(err error) error
	RenderMessage(style, msg string) error
}

// NewRenderer creates a renderer for format. FormatAuto inspects w when it
// is a file and falls back to text otherwise.
func NewRenderer(format Format, w io.Writer) (Renderer, error) {
	logger := logging.GetLogger("output")
	switch format {
	case FormatAuto:
		detected := FormatText
		if f, ok := w.(*os.File); ok {
			detected = DetectFormat(f)
		}
		logger.Debug().Str("format", detected.String()).Msg("Detected output format")
		return NewRenderer(detected, w)
	case FormatTerminal:
		return &terminalRenderer{w: w}, nil
	case FormatText:
		return &textRenderer{w: w}, nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return &jsonRenderer{enc: enc}, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}

type terminalRenderer struct {
	w io.Writer
}

func (r *terminalRenderer) RenderReport(rep *Report) error {
	var b strings.Builder
	if rep.Title != "" {
		b.WriteString(GetStyle("Title").Render(rep.Title))
		b.WriteString("\n")
	}
	if rep.Table != nil && len(rep.Table.Rows) > 0 {
		data := append([][]string{rep.Table.Headers}, rep.Table.Rows...)
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to render table")
		}
		b.WriteString(table)
		b.WriteString("\n")
	}
	for _, line := range rep.Lines {
		if line.Style != "" {
			b.WriteString(GetStyle(line.Style).Render(line.Text))
		} else {
			b.WriteString(line.Text)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *terminalRenderer) RenderError(err error) error {
	msg := GetStyle("Critical").Render("Error:") + " " + err.Error()
	_, werr := fmt.Fprintln(r.w, msg)
	return werr
}

func (r *terminalRenderer) RenderMessage(style, msg string) error {
	_, err := fmt.Fprintln(r.w, GetStyle(style).Render(msg))
	return err
}

type textRenderer struct {
	w io.Writer
}

func (r *textRenderer) RenderReport(rep *Report) error {
	var b strings.Builder
	if rep.Title != "" {
		b.WriteString(rep.Title)
		b.WriteString("\n\n")
	}
	if rep.Table != nil && len(rep.Table.Rows) > 0 {
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(rep.Table.Headers, "\t"))
		for _, row := range rep.Table.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	for _, line := range rep.Lines {
		b.WriteString(line.Text)
		b.WriteString("\n")
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *textRenderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.w, "Error: %v\n", err)
	return werr
}

func (r *textRenderer) RenderMessage(_ string, msg string) error {
	_, err := fmt.Fprintln(r.w, msg)
	return err
}

type jsonRenderer struct {
	enc *json.Encoder
}

func (r *jsonRenderer) RenderReport(rep *Report) error {
	if rep.Data != nil {
		return r.enc.Encode(rep.Data)
	}
	return r.enc.Encode(rep)
}

func (r *jsonRenderer) RenderError(err error) error {
	obj := map[string]interface{}{
		"error": err.Error(),
		"code":  string(errors.GetErrorCode(err)),
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		obj["details"] = details
	}
	return r.enc.Encode(obj)
}

func (r *jsonRenderer) RenderMessage(_ string, msg string) error {
	return r.enc.Encode(map[string]string{"message": msg})
}
