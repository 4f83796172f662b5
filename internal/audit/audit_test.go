package audit

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/chamada/internal/ws"
)

func newTestTrail(buf *bytes.Buffer) *Trail {
	trail := NewTrail(slog.New(slog.NewJSONHandler(buf, nil)))
	trail.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }
	return trail
}

func TestTrail_Publish(t *testing.T) {
	tests := []struct {
		name      string
		eventType ws.EventType
		data      interface{}
		wantData  string
	}{
		{
			name:      "attendance marked",
			eventType: ws.EventAttendanceMarked,
			data:      map[string]string{"roll_number": "07", "source": "photo"},
			wantData:  `{"roll_number":"07","source":"photo"}`,
		},
		{
			name:      "attendance unmarked",
			eventType: ws.EventAttendanceUnmarked,
			data:      map[string]string{"date": "2026-03-09"},
			wantData:  `{"date":"2026-03-09"}`,
		},
		{
			name:      "event without payload",
			eventType: ws.EventTrainingUpdated,
			data:      nil,
			wantData:  "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			classroomID := uuid.New()

			newTestTrail(&buf).Publish(classroomID, tt.eventType, tt.data)

			var logEntry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))

			assert.Equal(t, "audit_event", logEntry["msg"])
			assert.Equal(t, "audit", logEntry["component"])
			assert.Equal(t, string(tt.eventType), logEntry["event_type"])
			assert.Equal(t, classroomID.String(), logEntry["classroom_id"])
			assert.Equal(t, "2026-03-09T12:00:00Z", logEntry["timestamp"])
			assert.Equal(t, tt.wantData, logEntry["event_data"])

			_, err := uuid.Parse(logEntry["event_id"].(string))
			assert.NoError(t, err)
		})
	}
}

func TestTrail_PublishUnencodableData(t *testing.T) {
	var buf bytes.Buffer

	newTestTrail(&buf).Publish(uuid.New(), ws.EventAttendanceMarked, map[string]interface{}{"bad": make(chan int)})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "failed to marshal audit data")
	assert.Contains(t, string(lines[1]), `"event_data":""`)
}
