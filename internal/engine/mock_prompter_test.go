package engine

import (
	"context"
	"fmt"

	"github.com/mhartung/ablage/internal/service"
)

// MockPrompter is a scripted Prompter for tests: answers are queued up
// front and every request is recorded for assertions.
type MockPrompter struct {
	CategoryChoices   []service.CategoryChoice
	CategoryRequests  []service.CategoryRequest
	OverwriteRequests []string
	ProceedRequests   []string
	OverwriteAnswer   bool
	ProceedAnswer     bool
	categoryIndex     int
}

// ChooseCategory returns the next queued category choice.
func (m *MockPrompter) ChooseCategory(_ context.Context, req service.CategoryRequest) (service.CategoryChoice, error) {
	m.CategoryRequests = append(m.CategoryRequests, req)
	if m.categoryIndex >= len(m.CategoryChoices) {
		return service.CategoryChoice{}, fmt.Errorf("unexpected category request for %q", req.DocType)
	}
	choice := m.CategoryChoices[m.categoryIndex]
	m.categoryIndex++
	return choice, nil
}

// ConfirmOverwrite returns the scripted overwrite answer.
func (m *MockPrompter) ConfirmOverwrite(_ context.Context, targetPath string) (bool, error) {
	m.OverwriteRequests = append(m.OverwriteRequests, targetPath)
	return m.OverwriteAnswer, nil
}

// ConfirmProceedUnsynced returns the scripted readiness-timeout answer.
func (m *MockPrompter) ConfirmProceedUnsynced(_ context.Context, sourcePath string) (bool, error) {
	m.ProceedRequests = append(m.ProceedRequests, sourcePath)
	return m.ProceedAnswer, nil
}
