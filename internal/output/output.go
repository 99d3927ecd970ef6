package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/dshills/reviewlens/internal/report"
	"github.com/dshills/reviewlens/internal/storage"
)

// Display formats accepted by GetWriter.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatNone     = "none"
)

// Artifact formats accepted by Artifacts.
const (
	ArtifactCSV  = "csv"
	ArtifactJSON = "json"
)

// Formats lists the display formats.
var Formats = []string{FormatText, FormatMarkdown, FormatJSON, FormatNone}

// ArtifactFormats lists the file formats a run can be saved in.
var ArtifactFormats = []string{ArtifactCSV, ArtifactJSON}

// Writer renders a run in a specific format.
type Writer interface {
	Write(w io.Writer, run *report.Run) error
}

// GetWriter returns a writer for the specified display format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case FormatText, "":
		return &TextWriter{}, nil
	case FormatMarkdown:
		return &MarkdownWriter{}, nil
	case FormatJSON:
		return &JSONWriter{}, nil
	case FormatNone:
		return nopWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteRun writes the run to outPath, or to stdout when outPath is empty.
func WriteRun(run *report.Run, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, run)
}

// ArtifactName returns "<category>/<category>_<kind>_<label>.<ext>" where
// label is the run's output name, or its id when no name was given.
func ArtifactName(run *report.Run, kind, ext string) string {
	label := run.OutputName
	if label == "" {
		label = run.ID
	}
	return path.Join(run.Category, fmt.Sprintf("%s_%s_%s.%s", run.Category, kind, label, ext))
}

// Artifacts renders the run's files for each requested format. CSV produces
// a summary and a details file; JSON produces one file holding the whole run.
func Artifacts(run *report.Run, formats []string) ([]storage.Artifact, error) {
	var out []storage.Artifact
	for _, format := range formats {
		switch format {
		case ArtifactCSV:
			var summary, details bytes.Buffer
			if err := WriteSummaryCSV(&summary, run.Tables.Summary); err != nil {
				return nil, err
			}
			if err := WriteDetailsCSV(&details, run.Tables.Details); err != nil {
				return nil, err
			}
			out = append(out,
				storage.Artifact{Name: ArtifactName(run, "summary", "csv"), ContentType: storage.ContentTypeCSV, Data: summary.Bytes()},
				storage.Artifact{Name: ArtifactName(run, "details", "csv"), ContentType: storage.ContentTypeCSV, Data: details.Bytes()},
			)
		case ArtifactJSON:
			var buf bytes.Buffer
			if err := (&JSONWriter{}).Write(&buf, run); err != nil {
				return nil, err
			}
			out = append(out, storage.Artifact{Name: ArtifactName(run, "run", "json"), ContentType: storage.ContentTypeJSON, Data: buf.Bytes()})
		default:
			return nil, fmt.Errorf("unsupported artifact format: %s", format)
		}
	}
	return out, nil
}

type nopWriter struct{}

func (nopWriter) Write(io.Writer, *report.Run) error { return nil }
