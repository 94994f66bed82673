package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gratitude-api/internal/submission"
	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
	"github.com/noah-isme/gratitude-api/pkg/jobs"
)

const (
	defaultWorkers  = 4
	errNotSubmitted = "not submitted"
)

type submitFlags struct {
	name    string
	school  string
	grade   string
	content string
	country string
	fields  []string
	file    string
	workers int
}

// bulkLine is one line of --file output.
type bulkLine struct {
	Index          int                `json:"index"`
	Success        bool               `json:"success"`
	Result         *submission.Result `json:"result,omitempty"`
	Error          string             `json:"error,omitempty"`
	RequiredFields []string           `json:"requiredFields,omitempty"`
}

func newSubmitCommand(a *app) *cobra.Command {
	f := &submitFlags{}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit one letter, or a JSON array of letters with --file",
		Example: `  lettersctl submit --name Kim --content "Thank you" --country usa
  lettersctl submit --field sender=Kim --field message=Hi --field country=usa
  lettersctl submit --file letters.json --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.file != "" {
				return runBulkSubmit(cmd.Context(), a.client, f, cmd.OutOrStdout())
			}
			return runSingleSubmit(cmd.Context(), a.client, f, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&f.name, "name", "", "Writer name")
	cmd.Flags().StringVar(&f.school, "school", "", "School or affiliation")
	cmd.Flags().StringVar(&f.grade, "grade", "", "Grade")
	cmd.Flags().StringVar(&f.content, "content", "", "Letter content")
	cmd.Flags().StringVar(&f.country, "country", "", "Target country id")
	cmd.Flags().StringArrayVar(&f.fields, "field", nil, "Raw key=value payload field, repeatable")
	cmd.Flags().StringVar(&f.file, "file", "", "JSON file holding an array of letter payloads")
	cmd.Flags().IntVar(&f.workers, "workers", defaultWorkers, "Concurrent submissions with --file")
	return cmd
}

func (f *submitFlags) payload() (map[string]interface{}, error) {
	input := map[string]interface{}{}
	for key, value := range map[string]string{
		"name":          f.name,
		"school":        f.school,
		"grade":         f.grade,
		"letterContent": f.content,
		"countryId":     f.country,
	} {
		if value != "" {
			input[key] = value
		}
	}
	for _, raw := range f.fields {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --field %q, want key=value", raw)
		}
		input[key] = value
	}
	return input, nil
}

func runSingleSubmit(ctx context.Context, client submitter, f *submitFlags, out io.Writer) error {
	input, err := f.payload()
	if err != nil {
		return err
	}
	res, err := client.Submit(ctx, input)
	if err != nil {
		return describe(err)
	}
	return writeJSON(out, res)
}

func runBulkSubmit(ctx context.Context, client submitter, f *submitFlags, out io.Writer) error {
	raw, err := os.ReadFile(f.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.file, err)
	}
	var payloads []map[string]interface{}
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return fmt.Errorf("parse %s: want a JSON array of objects: %w", f.file, err)
	}

	lines := make([]bulkLine, len(payloads))
	for i := range lines {
		lines[i] = bulkLine{Index: i, Error: errNotSubmitted}
	}
	queue := jobs.NewQueue[int]("lettersctl-submit", func(ctx context.Context, job jobs.Job[int]) error {
		if ctx.Err() != nil {
			return nil
		}
		i := job.Payload
		line := bulkLine{Index: i}
		res, err := client.Submit(ctx, payloads[i])
		if err != nil {
			line.Error = err.Error()
			if appErr := appErrors.FromError(err); appErr.Code == appErrors.CodeValidation {
				line.Error = appErr.Message
				line.RequiredFields = appErr.Fields
			}
		} else {
			line.Success = true
			line.Result = res
		}
		lines[i] = line
		return nil
	}, jobs.QueueConfig{Workers: f.workers, BufferSize: len(payloads)})

	queue.Start(ctx)
	var interrupted error
	for i := range payloads {
		if err := queue.Enqueue(jobs.Job[int]{ID: strconv.Itoa(i), Payload: i}); err != nil {
			interrupted = err
			break
		}
	}
	if interrupted == nil {
		interrupted = queue.Wait()
	}
	// Workers must be gone before lines is read.
	queue.Stop()

	failed, skipped := 0, 0
	for _, line := range lines {
		if !line.Success {
			failed++
		}
		if line.Error == errNotSubmitted {
			skipped++
		}
		if err := writeJSON(out, line); err != nil {
			return err
		}
	}
	if interrupted != nil {
		return fmt.Errorf("interrupted with %d of %d letters not submitted: %w", skipped, len(lines), interrupted)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d letters rejected", failed, len(lines))
	}
	return nil
}

func describe(err error) error {
	appErr := appErrors.FromError(err)
	if appErr.Code == appErrors.CodeValidation && len(appErr.Fields) > 0 {
		return fmt.Errorf("%s (required: %s)", appErr.Message, strings.Join(appErr.Fields, ", "))
	}
	return err
}

func writeJSON(out io.Writer, v interface{}) error {
	return json.NewEncoder(out).Encode(v)
}
