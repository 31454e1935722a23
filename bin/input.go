package main

import (
	"errors"
	"io"

	chzyer "github.com/chzyer/readline"
)

// terminalReader serves gapir with line editing when stdin is a terminal.
type terminalReader struct{}

func (terminalReader) ReadLine(prompt string) (string, error) {
	rl, err := chzyer.NewEx(&chzyer.Config{
		Prompt:                 prompt,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return "", err
	}
	defer rl.Close()

	line, err := rl.Readline()
	if errors.Is(err, chzyer.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}
