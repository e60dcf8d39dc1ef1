package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"ripmedia/internal/model"
)

type chooser interface {
	Choose(ctx context.Context, candidates []model.ResolvedSource) (string, error)
}

type askFunc func(p survey.Prompt, response any, opts ...survey.AskOpt) error

// surveyChooser asks the user to pick a resolver candidate with an arrow-key
// menu.
type surveyChooser struct {
	ask   askFunc
	stdio terminal.Stdio
}

func newSurveyChooser(in io.Reader, out io.Writer) chooser {
	stdio := terminal.Stdio{In: os.Stdin, Out: os.Stderr, Err: os.Stderr}
	if f, ok := in.(terminal.FileReader); ok {
		stdio.In = f
	}
	if f, ok := out.(terminal.FileWriter); ok {
		stdio.Out = f
		stdio.Err = f
	}
	return surveyChooser{ask: survey.AskOne, stdio: stdio}
}

func (c surveyChooser) Choose(ctx context.Context, candidates []model.ResolvedSource) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", errors.New("no candidates to choose from")
	}
	options := make([]string, len(candidates))
	for i, cand := range candidates {
		options[i] = candidateLabel(i+1, cand)
	}
	prompt := &survey.Select{
		Message:  "Pick a source:",
		Options:  options,
		Default:  options[0],
		PageSize: len(options),
	}
	var index int
	if err := c.ask(prompt, &index, survey.WithStdio(c.stdio.In, c.stdio.Out, c.stdio.Err)); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", context.Canceled
		}
		return "", err
	}
	return strconv.Itoa(index + 1), nil
}

func candidateLabel(n int, cand model.ResolvedSource) string {
	label := fmt.Sprintf("%d. [%.2f] %s", n, cand.Confidence, orDash(cand.SelectedTitle))
	if cand.SelectedUploader != "" {
		label += " · " + cand.SelectedUploader
	}
	if cand.ConfidenceHint != "" {
		label += " (" + cand.ConfidenceHint + ")"
	}
	return label
}
