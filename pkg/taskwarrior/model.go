package taskwarrior

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PENDING   = "pending"
	COMPLETED = "completed"
	WAITING   = "waiting"
	DELETED   = "deleted"
	RECURRING = "recurring"
)

type CustomTime struct {
	time.Time
}

const taskwarriorTimeLayout = "20060102T150405Z" // YYYYMMDDTHHMMSSZ, 'Z' indicates UTC

// NewTime returns a CustomTime truncated to the second precision Taskwarrior stores.
func NewTime(t time.Time) *CustomTime {
	return &CustomTime{Time: t.UTC().Truncate(time.Second)}
}

// UnmarshalJSON implements the json.Unmarshaler interface for CustomTime.
func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" {
		ct.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(taskwarriorTimeLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse Taskwarrior time string '%s': %w", s, err)
	}
	ct.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface for CustomTime.
func (ct CustomTime) MarshalJSON() ([]byte, error) {
	if ct.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + ct.Time.UTC().Format(taskwarriorTimeLayout) + `"`), nil
}

type Annotation struct {
	Entry       *CustomTime `json:"entry,omitempty"`
	Description string      `json:"description"`
}

// IsLink reports whether the annotation text is an http(s) URL.
func (a Annotation) IsLink() bool {
	return strings.HasPrefix(a.Description, "https://") || strings.HasPrefix(a.Description, "http://")
}

type Task struct {
	ID          int          `json:"id,omitempty"`
	UUID        uuid.UUID    `json:"uuid"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Project     string       `json:"project,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Urgency     *float64     `json:"urgency,omitempty"`
	Entry       *CustomTime  `json:"entry,omitempty"`
	Modified    *CustomTime  `json:"modified,omitempty"`
	Due         *CustomTime  `json:"due,omitempty"`
	Scheduled   *CustomTime  `json:"scheduled,omitempty"`
	Wait        *CustomTime  `json:"wait,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
	// Time tracking
	Start *CustomTime `json:"start,omitempty"`
	End   *CustomTime `json:"end,omitempty"`
	// UDAs configured as uda.estimate.label=est, uda.actual.label=act.
	Est string `json:"est,omitempty"`
	Act string `json:"act,omitempty"`

	// Extra keeps attributes this package does not model (other UDAs,
	// depends, recur, ...) so a read-modify-save cycle does not drop them.
	Extra map[string]json.RawMessage `json:"-"`
}

// taskFields is an alias without methods, used to avoid recursion in the
// JSON hooks below.
type taskFields Task

var knownFields = map[string]bool{
	"id": true, "uuid": true, "description": true, "status": true,
	"project": true, "tags": true, "urgency": true, "entry": true,
	"modified": true, "due": true, "scheduled": true, "wait": true,
	"annotations": true, "start": true, "end": true, "est": true, "act": true,
}

func (t *Task) UnmarshalJSON(b []byte) error {
	var fields taskFields
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k := range raw {
		if knownFields[k] {
			delete(raw, k)
		}
	}
	if len(raw) > 0 {
		fields.Extra = raw
	} else {
		fields.Extra = nil
	}
	*t = Task(fields)
	return nil
}

func (t Task) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(taskFields(t))
	if err != nil {
		return nil, err
	}
	if len(t.Extra) == 0 {
		return b, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, v := range t.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Ref returns the short numeric id when the task has one, otherwise its UUID.
func (t *Task) Ref() string {
	if t.ID != 0 {
		return strconv.Itoa(t.ID)
	}
	return t.UUID.String()
}

func (t *Task) Active() bool {
	return t.Start != nil && !t.Start.IsZero()
}

// Annotate appends an annotation stamped with the given time.
func (t *Task) Annotate(at time.Time, text string) {
	t.Annotations = append(t.Annotations, Annotation{Entry: NewTime(at), Description: text})
}

// Links returns the annotations that hold http(s) URLs, in stored order.
func (t *Task) Links() []Annotation {
	var links []Annotation
	for _, a := range t.Annotations {
		if a.IsLink() {
			links = append(links, a)
		}
	}
	return links
}
