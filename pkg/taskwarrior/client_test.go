package taskwarrior

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskmenu/pkg/process"
)

func TestParseTask(t *testing.T) {
	input := `{
		"id": 4,
		"uuid": "f45a05b3-c12e-42e5-9c9c-333333333333",
		"description": "Buy milk",
		"status": "pending",
		"due": "20230101T120000Z",
		"project": "Groceries",
		"tags": ["buy", "food"],
		"urgency": 5.2,
		"annotations": [
			{"entry": "20230101T120500Z", "description": "Don't forget almond milk"}
		]
	}`

	client := NewClient("", nil)
	tasks, err := client.ParseTasks(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]

	if task.UUID.String() != "f45a05b3-c12e-42e5-9c9c-333333333333" {
		t.Errorf("Expected UUID f45a05b3-c12e-42e5-9c9c-333333333333, got %s", task.UUID)
	}
	if task.Description != "Buy milk" {
		t.Errorf("Expected Description 'Buy milk', got '%s'", task.Description)
	}
	if task.Project != "Groceries" {
		t.Errorf("Expected Project 'Groceries', got '%s'", task.Project)
	}
	if len(task.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %d", len(task.Tags))
	}
	if len(task.Annotations) != 1 {
		t.Errorf("Expected 1 annotation, got %d", len(task.Annotations))
	}
	if task.Urgency == nil || *task.Urgency != 5.2 {
		t.Errorf("Expected urgency 5.2, got %v", task.Urgency)
	}
	if task.Ref() != "4" {
		t.Errorf("Expected ref 4, got %s", task.Ref())
	}
	expectedDue, _ := time.Parse(time.RFC3339, "2023-01-01T12:00:00Z")
	if !task.Due.Time.Equal(expectedDue) {
		t.Errorf("Expected Due %v, got %v", expectedDue, task.Due.Time)
	}
}

func TestTaskKeepsUnknownAttributes(t *testing.T) {
	input := `{"uuid":"f45a05b3-c12e-42e5-9c9c-333333333333","description":"x","status":"pending","priority":"H","depends":["a"]}`

	var task Task
	require.NoError(t, json.Unmarshal([]byte(input), &task))
	require.Contains(t, task.Extra, "priority")

	out, err := json.Marshal(task)
	require.NoError(t, err)

	var round map[string]any
	require.NoError(t, json.Unmarshal(out, &round))
	assert.Equal(t, "H", round["priority"])
	assert.Equal(t, []any{"a"}, round["depends"])
	assert.Equal(t, "x", round["description"])
}

func TestRefFallsBackToUUID(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"uuid":"f45a05b3-c12e-42e5-9c9c-333333333333","status":"completed"}`), &task))
	assert.Equal(t, "f45a05b3-c12e-42e5-9c9c-333333333333", task.Ref())
}

func TestLinks(t *testing.T) {
	task := Task{Annotations: []Annotation{
		{Description: "call bob"},
		{Description: "https://example.com/a"},
		{Description: "http://example.com/b"},
		{Description: "ftp://example.com/c"},
	}}
	links := task.Links()
	require.Len(t, links, 2)
	assert.Equal(t, "https://example.com/a", links[0].Description)
	assert.Equal(t, "http://example.com/b", links[1].Description)
}

func TestConfigVar(t *testing.T) {
	fake := &process.Fake{Handler: func(call process.Call) (process.Result, error) {
		return process.Result{Stdout: "\nConfig Variable Value\n---------------- -----\nreport.next.filter status:pending -WAITING limit:page\n"}, nil
	}}
	client := NewClient("task", fake)

	value, err := client.ConfigVar(context.Background(), "report.next.filter")
	require.NoError(t, err)
	assert.Equal(t, "status:pending -WAITING limit:page", value)
	assert.Equal(t, []string{"rc.confirmation=off", "show", "report.next.filter"}, fake.Calls[0].Args)

	_, err = client.ConfigVar(context.Background(), "default.command")
	assert.True(t, errors.Is(err, ErrConfigVarNotFound))
}

func TestDefaultFilter(t *testing.T) {
	fake := &process.Fake{Handler: func(call process.Call) (process.Result, error) {
		switch call.Args[2] {
		case "default.command":
			return process.Result{Stdout: "default.command next\n"}, nil
		case "report.next.filter":
			return process.Result{Stdout: "report.next.filter status:pending\n"}, nil
		}
		return process.Result{}, nil
	}}
	filter, err := NewClient("", fake).DefaultFilter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "status:pending", filter)
}

func TestAdd(t *testing.T) {
	fake := &process.Fake{Handler: func(call process.Call) (process.Result, error) {
		return process.Result{Stdout: "Created task 12.\n"}, nil
	}}
	id, err := NewClient("", fake).Add(context.Background(), []string{"buy", "milk", "project:home"})
	require.NoError(t, err)
	assert.Equal(t, 12, id)
	assert.Equal(t, []string{"rc.confirmation=off", "add", "buy", "milk", "project:home"}, fake.Calls[0].Args)
}

func TestAddUnexpectedOutput(t *testing.T) {
	fake := &process.Fake{Handler: func(call process.Call) (process.Result, error) {
		return process.Result{Stdout: "Something else", Stderr: "warn"}, nil
	}}
	_, err := NewClient("", fake).Add(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected output from add command")
	assert.Contains(t, err.Error(), "warn")
}

func TestRunNonZeroExit(t *testing.T) {
	fake := &process.Fake{Handler: func(call process.Call) (process.Result, error) {
		return process.Result{Stdout: "out", Stderr: "No matches.", ExitCode: 1}, nil
	}}
	err := NewClient("", fake).Modify(context.Background(), "3", []string{"+next"})
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 1, cmdErr.ExitCode)
	assert.Contains(t, err.Error(), "stdout: out / stderr: No matches.")
}

func TestGetTasks(t *testing.T) {
	fake := &process.Fake{Handler: func(call process.Call) (process.Result, error) {
		return process.Result{Stdout: `{"id":1,"uuid":"f45a05b3-c12e-42e5-9c9c-333333333333","description":"a","status":"pending"}
{"id":2,"uuid":"f45a05b3-c12e-42e5-9c9c-444444444444","description":"b","status":"pending","urgency":1.5}
`}, nil
	}}
	tasks, err := NewClient("", fake).Query(context.Background(), "status:pending  +work")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].Description)
	assert.Equal(t, "b", tasks[1].Description)
	assert.Equal(t, []string{"rc.confirmation=off", "status:pending", "+work", "export", "rc.json.array=off", "rc.hooks=0"}, fake.Calls[0].Args)
}

func TestParseTasksFormats(t *testing.T) {
	client := NewClient("", nil)

	tasks, err := client.ParseTasks(strings.NewReader(`[{"uuid":"f45a05b3-c12e-42e5-9c9c-333333333333","description":"a","status":"pending"}]`))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Description)

	tasks, err = client.ParseTasks(strings.NewReader("\n"))
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = client.ParseTasks(strings.NewReader(`{"uuid":"f45a05b3-c12e-42e5-9c9c-333333333333"} {"uuid":`))
	assert.Error(t, err)
}

func TestSaveStripsReadOnlyAttributes(t *testing.T) {
	fake := &process.Fake{}
	urgency := 3.0
	task := Task{ID: 7, Urgency: &urgency, Description: "a", Status: PENDING}
	task.Annotate(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), "note")

	require.NoError(t, NewClient("", fake).Save(context.Background(), task))
	require.Len(t, fake.Calls, 1)
	assert.Equal(t, []string{"rc.confirmation=off", "import", "-"}, fake.Calls[0].Args)

	var sent []map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.Calls[0].Stdin), &sent))
	require.Len(t, sent, 1)
	assert.NotContains(t, sent[0], "id")
	assert.NotContains(t, sent[0], "urgency")
	assert.Equal(t, []any{map[string]any{"entry": "20240501T100000Z", "description": "note"}}, sent[0]["annotations"])
	// the caller's copy is untouched
	assert.Equal(t, 7, task.ID)
}
