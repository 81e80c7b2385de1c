package queue

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Task types carried on the stream.
const (
	TaskPasswordResetEmail = "mail.password_reset"
	TaskInquiryEmail       = "mail.inquiry"
	TaskUploadsCleanup     = "uploads.cleanup"
)

// Task is one stream entry: a type and a JSON encoded payload.
type Task struct {
	ID   string
	Type string
	Data json.RawMessage
}

// Decode unmarshals the payload into out.
func (t Task) Decode(out any) error {
	if len(t.Data) == 0 {
		return fmt.Errorf("task %s has no payload", t.Type)
	}
	return json.Unmarshal(t.Data, out)
}

var errMissingType = errors.New("stream entry has no type")

func taskFromValues(id string, values map[string]any) (Task, error) {
	taskType, _ := values["type"].(string)
	if taskType == "" {
		return Task{}, errMissingType
	}
	task := Task{ID: id, Type: taskType}
	if data, ok := values["data"].(string); ok && data != "" {
		task.Data = json.RawMessage(data)
	}
	return task, nil
}
