package llm

import (
	"context"
	"strings"
)

// Mock is the offline generator: it echoes a fixed acknowledgement plus the
// first line of the task so demo output stays traceable to its prompt.
type Mock struct{}

func (Mock) Generate(_ context.Context, _, userPrompt string) (string, error) {
	task := userPrompt
	if i := strings.IndexByte(task, '\n'); i >= 0 {
		task = task[:i]
	}
	return "Раздел сформирован в автономном режиме без обращения к языковой модели. " +
		"Задача: " + strings.TrimSpace(task), nil
}
