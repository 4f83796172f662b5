package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/chamada/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/matcher"
	"github.com/saturnino-fabrica-de-software/chamada/internal/service"
	"github.com/saturnino-fabrica-de-software/chamada/internal/session"
	"github.com/saturnino-fabrica-de-software/chamada/internal/training"
)

type MockClassroomService struct {
	mock.Mock
}

func (m *MockClassroomService) Create(ctx context.Context, teacherID uuid.UUID, name string) (*domain.Classroom, error) {
	args := m.Called(ctx, teacherID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Classroom), args.Error(1)
}

func (m *MockClassroomService) List(ctx context.Context, teacherID uuid.UUID) ([]domain.Classroom, error) {
	args := m.Called(ctx, teacherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Classroom), args.Error(1)
}

func (m *MockClassroomService) Authorize(ctx context.Context, teacherID, classroomID uuid.UUID) (*domain.Classroom, error) {
	args := m.Called(ctx, teacherID, classroomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Classroom), args.Error(1)
}

type MockAttendanceService struct {
	mock.Mock
}

func (m *MockAttendanceService) DetectAndMatch(ctx context.Context, teacherID, classroomID uuid.UUID, image []byte) (*session.Session, error) {
	args := m.Called(ctx, teacherID, classroomID, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockAttendanceService) Diagnose(ctx context.Context, teacherID, classroomID uuid.UUID, image []byte) (*service.Diagnosis, error) {
	args := m.Called(ctx, teacherID, classroomID, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Diagnosis), args.Error(1)
}

func (m *MockAttendanceService) ConfirmSession(ctx context.Context, teacherID, classroomID uuid.UUID, sess *session.Session) (*domain.ConfirmationResult, error) {
	args := m.Called(ctx, teacherID, classroomID, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConfirmationResult), args.Error(1)
}

func (m *MockAttendanceService) ApplyDecisions(ctx context.Context, teacherID, classroomID uuid.UUID, decisions []domain.Decision) (*domain.ConfirmationResult, error) {
	args := m.Called(ctx, teacherID, classroomID, decisions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConfirmationResult), args.Error(1)
}

func (m *MockAttendanceService) MarkPresent(ctx context.Context, teacherID, classroomID, studentID uuid.UUID) (*domain.AttendanceRecord, bool, error) {
	args := m.Called(ctx, teacherID, classroomID, studentID)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.AttendanceRecord), args.Bool(1), args.Error(2)
}

func (m *MockAttendanceService) Unmark(ctx context.Context, teacherID, classroomID, studentID uuid.UUID, date time.Time) error {
	args := m.Called(ctx, teacherID, classroomID, studentID, date)
	return args.Error(0)
}

func (m *MockAttendanceService) ListAttendance(ctx context.Context, teacherID, classroomID uuid.UUID, date time.Time) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx, teacherID, classroomID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

type MockEnrollmentService struct {
	mock.Mock
}

func (m *MockEnrollmentService) Enroll(ctx context.Context, teacherID, classroomID uuid.UUID, rollNumber, name string, image []byte) (*domain.Student, error) {
	args := m.Called(ctx, teacherID, classroomID, rollNumber, name, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockEnrollmentService) AddPhoto(ctx context.Context, teacherID, studentID uuid.UUID, image []byte, strict bool) (training.Result, error) {
	args := m.Called(ctx, teacherID, studentID, image, strict)
	return args.Get(0).(training.Result), args.Error(1)
}

func (m *MockEnrollmentService) AddTrainingSample(ctx context.Context, teacherID, studentID uuid.UUID, embedding domain.Embedding, strict bool) (training.Result, error) {
	args := m.Called(ctx, teacherID, studentID, embedding, strict)
	return args.Get(0).(training.Result), args.Error(1)
}

func (m *MockEnrollmentService) ResetTrainingSamples(ctx context.Context, teacherID, studentID uuid.UUID) (training.Result, error) {
	args := m.Called(ctx, teacherID, studentID)
	return args.Get(0).(training.Result), args.Error(1)
}

func (m *MockEnrollmentService) Verify(ctx context.Context, teacherID, studentID uuid.UUID, image []byte) (*matcher.Verification, error) {
	args := m.Called(ctx, teacherID, studentID, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*matcher.Verification), args.Error(1)
}

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	teacherID  uuid.UUID
	classrooms *MockClassroomService
	attendance *MockAttendanceService
	enrollment *MockEnrollmentService
	app        *fiber.App
}

// newTestServer mounts every handler behind a fake authentication step
func newTestServer() *testServer {
	s := &testServer{
		teacherID:  uuid.New(),
		classrooms: &MockClassroomService{},
		attendance: &MockAttendanceService{},
		enrollment: &MockEnrollmentService{},
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(testLogger())})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalTeacherID, s.teacherID)
		return c.Next()
	})

	ch := NewClassroomHandler(s.classrooms, testLogger())
	dh := NewDetectionHandler(s.attendance, testLogger())
	ah := NewAttendanceHandler(s.attendance, testLogger())
	sh := NewStudentHandler(s.enrollment, testLogger())

	app.Post("/classrooms", ch.Create)
	app.Get("/classrooms", ch.List)
	app.Post("/classrooms/:classroom_id/detections", dh.Detect)
	app.Post("/classrooms/:classroom_id/diagnose", dh.Diagnose)
	app.Post("/sessions/review", dh.Review)
	app.Post("/classrooms/:classroom_id/attendance/confirm", ah.Confirm)
	app.Post("/classrooms/:classroom_id/attendance", ah.Mark)
	app.Delete("/classrooms/:classroom_id/attendance/:student_id", ah.Unmark)
	app.Get("/classrooms/:classroom_id/attendance", ah.List)
	app.Post("/classrooms/:classroom_id/students", sh.Enroll)
	app.Post("/students/:student_id/photos", sh.AddPhoto)
	app.Post("/students/:student_id/verify", sh.Verify)
	app.Post("/students/:student_id/samples", sh.AddSample)
	app.Delete("/students/:student_id/samples", sh.ResetSamples)

	s.app = app
	return s
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a form with the given fields and an optional image part
func multipartRequest(t *testing.T, target string, fields map[string]string, image []byte, contentType string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}

	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="class.jpg"`)
		h.Set("Content-Type", contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, _ = part.Write(image)
	}

	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.Error.Code
}

func TestClassroomHandler(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		s := newTestServer()
		s.classrooms.On("Create", mock.Anything, s.teacherID, "5A").
			Return(&domain.Classroom{ID: uuid.New(), TeacherID: s.teacherID, Name: "5A"}, nil)

		resp, body := s.do(t, jsonRequest(t, "POST", "/classrooms", CreateClassroomRequest{Name: "5A"}))
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Contains(t, string(body), `"name":"5A"`)
	})

	t.Run("list", func(t *testing.T) {
		s := newTestServer()
		s.classrooms.On("List", mock.Anything, s.teacherID).Return([]domain.Classroom{{Name: "5A"}, {Name: "6B"}}, nil)

		resp, body := s.do(t, httptest.NewRequest("GET", "/classrooms", nil))
		assert.Equal(t, 200, resp.StatusCode)

		var out struct {
			Classrooms []domain.Classroom `json:"classrooms"`
		}
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Len(t, out.Classrooms, 2)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer()
		req := httptest.NewRequest("POST", "/classrooms", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")

		resp, body := s.do(t, req)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", errorCode(t, body))
	})
}

func TestDetectionHandler_Detect(t *testing.T) {
	image := bytes.Repeat([]byte{0xFF}, 2048)

	t.Run("returns the session with a summary", func(t *testing.T) {
		s := newTestServer()
		classroomID := uuid.New()
		studentID := uuid.New()
		sess := session.New(classroomID, []session.Face{
			{Candidate: &session.Candidate{StudentID: studentID, RollNumber: "01", Name: "Ana", Distance: 0.4, Confidence: 50}},
			{},
		}, time.Now())

		s.attendance.On("DetectAndMatch", mock.Anything, s.teacherID, classroomID, image).Return(sess, nil)

		resp, body := s.do(t, multipartRequest(t, "/classrooms/"+classroomID.String()+"/detections", nil, image, "image/jpeg"))
		require.Equal(t, 200, resp.StatusCode, string(body))

		var out SessionResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, session.OutcomeRecognized, out.Outcome)
		assert.Equal(t, 2, out.FaceCount)
		assert.Equal(t, 1, out.RecognizedCount)
		assert.Equal(t, 2, out.Summary.Pending)
		assert.Equal(t, studentID, out.Faces[0].Candidate.StudentID)
	})

	t.Run("service errors map to their status", func(t *testing.T) {
		s := newTestServer()
		classroomID := uuid.New()
		s.attendance.On("DetectAndMatch", mock.Anything, s.teacherID, classroomID, image).Return(nil, domain.ErrNoEnrolledFaces)

		resp, body := s.do(t, multipartRequest(t, "/classrooms/"+classroomID.String()+"/detections", nil, image, "image/jpeg"))
		assert.Equal(t, 422, resp.StatusCode)
		assert.Equal(t, "NO_ENROLLED_FACES", errorCode(t, body))
	})

	t.Run("image is required", func(t *testing.T) {
		s := newTestServer()

		resp, body := s.do(t, multipartRequest(t, "/classrooms/"+uuid.NewString()+"/detections", nil, nil, ""))
		assert.Equal(t, 422, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))
	})

	t.Run("unsupported content type", func(t *testing.T) {
		s := newTestServer()

		resp, body := s.do(t, multipartRequest(t, "/classrooms/"+uuid.NewString()+"/detections", nil, image, "image/gif"))
		assert.Equal(t, 422, resp.StatusCode)
		assert.Equal(t, "INVALID_IMAGE", errorCode(t, body))
	})

	t.Run("bad classroom id", func(t *testing.T) {
		s := newTestServer()

		resp, _ := s.do(t, multipartRequest(t, "/classrooms/not-a-uuid/detections", nil, image, "image/jpeg"))
		assert.Equal(t, 422, resp.StatusCode)
		s.attendance.AssertNotCalled(t, "DetectAndMatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDetectionHandler_Diagnose(t *testing.T) {
	s := newTestServer()
	classroomID := uuid.New()
	image := bytes.Repeat([]byte{0xFF}, 2048)

	s.attendance.On("Diagnose", mock.Anything, s.teacherID, classroomID, image).Return(&service.Diagnosis{
		ClassroomID:     classroomID,
		EnrolledCount:   3,
		Faces:           []service.FaceDiagnosis{},
		Recommendations: []string{"Try a clearer photo with better lighting"},
	}, nil)

	resp, body := s.do(t, multipartRequest(t, "/classrooms/"+classroomID.String()+"/diagnose", nil, image, "image/png"))
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), "Try a clearer photo with better lighting")
}

func TestDetectionHandler_Review(t *testing.T) {
	newSession := func() *session.Session {
		return session.New(uuid.New(), []session.Face{
			{Candidate: &session.Candidate{StudentID: uuid.New(), RollNumber: "01", Name: "Ana"}},
			{},
		}, time.Now())
	}

	t.Run("applies actions in order", func(t *testing.T) {
		s := newTestServer()
		assignee := &session.Assignee{StudentID: uuid.New(), RollNumber: "02", Name: "Bruno"}

		resp, body := s.do(t, jsonRequest(t, "POST", "/sessions/review", ReviewRequest{
			Session: newSession(),
			Actions: []session.Action{
				{Type: session.ActionConfirmAll},
				{Type: session.ActionCorrect, FaceIndex: 1, Assignee: assignee},
			},
		}))
		require.Equal(t, 200, resp.StatusCode, string(body))

		var out SessionResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, session.StateConfirmed, out.Faces[0].State)
		assert.Equal(t, session.StateCorrected, out.Faces[1].State)
		assert.True(t, out.Faces[1].AddToTraining)
		assert.Equal(t, session.Summary{Confirmed: 1, Corrected: 1}, out.Summary)
	})

	t.Run("confirming a face without candidate is rejected", func(t *testing.T) {
		s := newTestServer()

		resp, body := s.do(t, jsonRequest(t, "POST", "/sessions/review", ReviewRequest{
			Session: newSession(),
			Actions: []session.Action{{Type: session.ActionConfirm, FaceIndex: 1}},
		}))
		assert.Equal(t, 409, resp.StatusCode)
		assert.Equal(t, "INVALID_TRANSITION", errorCode(t, body))
	})

	t.Run("tampered session is rejected", func(t *testing.T) {
		s := newTestServer()
		sess := newSession()
		sess.Faces[1].State = session.StateConfirmed

		resp, body := s.do(t, jsonRequest(t, "POST", "/sessions/review", ReviewRequest{
			Session: sess,
			Actions: []session.Action{{Type: session.ActionConfirmAll}},
		}))
		assert.Equal(t, 422, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))
	})

	t.Run("session is required", func(t *testing.T) {
		s := newTestServer()

		resp, _ := s.do(t, jsonRequest(t, "POST", "/sessions/review", ReviewRequest{}))
		assert.Equal(t, 422, resp.StatusCode)
	})
}

func TestAttendanceHandler_Confirm(t *testing.T) {
	classroomID := uuid.New()
	target := "/classrooms/" + classroomID.String() + "/attendance/confirm"
	result := &domain.ConfirmationResult{MarkedCount: 1, Message: "1 marked present"}

	t.Run("raw decisions", func(t *testing.T) {
		s := newTestServer()
		studentID := uuid.New()
		s.attendance.On("ApplyDecisions", mock.Anything, s.teacherID, classroomID, mock.MatchedBy(func(d []domain.Decision) bool {
			return len(d) == 1 && *d[0].StudentID == studentID && d[0].AddToTraining
		})).Return(result, nil)

		resp, body := s.do(t, jsonRequest(t, "POST", target, ConfirmRequest{
			Decisions: []domain.Decision{{FaceIndex: 0, Action: domain.ActionConfirm, StudentID: &studentID, AddToTraining: true}},
		}))
		require.Equal(t, 200, resp.StatusCode)
		assert.Contains(t, string(body), `"marked_count":1`)
	})

	t.Run("reviewed session", func(t *testing.T) {
		s := newTestServer()
		s.attendance.On("ConfirmSession", mock.Anything, s.teacherID, classroomID, mock.AnythingOfType("*session.Session")).Return(result, nil)

		resp, _ := s.do(t, jsonRequest(t, "POST", target, ConfirmRequest{Session: session.New(classroomID, nil, time.Now())}))
		assert.Equal(t, 200, resp.StatusCode)
		s.attendance.AssertExpectations(t)
	})

	t.Run("empty body", func(t *testing.T) {
		s := newTestServer()

		resp, _ := s.do(t, jsonRequest(t, "POST", target, ConfirmRequest{}))
		assert.Equal(t, 422, resp.StatusCode)
	})

	t.Run("classroom of another teacher", func(t *testing.T) {
		s := newTestServer()
		s.attendance.On("ApplyDecisions", mock.Anything, s.teacherID, classroomID, mock.Anything).Return(nil, domain.ErrUnauthorizedClassroom)

		resp, body := s.do(t, jsonRequest(t, "POST", target, ConfirmRequest{Decisions: []domain.Decision{}}))
		assert.Equal(t, 403, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED_CLASSROOM", errorCode(t, body))
	})
}

func TestAttendanceHandler_Manual(t *testing.T) {
	classroomID := uuid.New()
	studentID := uuid.New()
	base := "/classrooms/" + classroomID.String() + "/attendance"

	t.Run("mark creates", func(t *testing.T) {
		s := newTestServer()
		s.attendance.On("MarkPresent", mock.Anything, s.teacherID, classroomID, studentID).
			Return(&domain.AttendanceRecord{StudentID: studentID}, true, nil)

		resp, body := s.do(t, jsonRequest(t, "POST", base, MarkRequest{StudentID: studentID.String()}))
		assert.Equal(t, 201, resp.StatusCode)
		assert.Contains(t, string(body), `"created":true`)
	})

	t.Run("mark again is a no-op", func(t *testing.T) {
		s := newTestServer()
		s.attendance.On("MarkPresent", mock.Anything, s.teacherID, classroomID, studentID).
			Return(&domain.AttendanceRecord{StudentID: studentID}, false, nil)

		resp, body := s.do(t, jsonRequest(t, "POST", base, MarkRequest{StudentID: studentID.String()}))
		assert.Equal(t, 200, resp.StatusCode)
		assert.Contains(t, string(body), `"created":false`)
	})

	t.Run("mark needs a valid student id", func(t *testing.T) {
		s := newTestServer()

		resp, _ := s.do(t, jsonRequest(t, "POST", base, MarkRequest{StudentID: "x"}))
		assert.Equal(t, 422, resp.StatusCode)
	})

	t.Run("unmark with date", func(t *testing.T) {
		s := newTestServer()
		day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
		s.attendance.On("Unmark", mock.Anything, s.teacherID, classroomID, studentID, day).Return(nil)

		resp, _ := s.do(t, httptest.NewRequest("DELETE", base+"/"+studentID.String()+"?date=2026-03-09", nil))
		assert.Equal(t, 204, resp.StatusCode)
		s.attendance.AssertExpectations(t)
	})

	t.Run("unmark with malformed date", func(t *testing.T) {
		s := newTestServer()

		resp, _ := s.do(t, httptest.NewRequest("DELETE", base+"/"+studentID.String()+"?date=09/03/2026", nil))
		assert.Equal(t, 422, resp.StatusCode)
		s.attendance.AssertNotCalled(t, "Unmark", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unmark of an absent student", func(t *testing.T) {
		s := newTestServer()
		s.attendance.On("Unmark", mock.Anything, s.teacherID, classroomID, studentID, time.Time{}).Return(domain.ErrAttendanceNotFound)

		resp, _ := s.do(t, httptest.NewRequest("DELETE", base+"/"+studentID.String(), nil))
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("list today", func(t *testing.T) {
		s := newTestServer()
		s.attendance.On("ListAttendance", mock.Anything, s.teacherID, classroomID, time.Time{}).
			Return([]domain.AttendanceRecord{{RollNumber: "01"}, {RollNumber: "02"}}, nil)

		resp, body := s.do(t, httptest.NewRequest("GET", base, nil))
		assert.Equal(t, 200, resp.StatusCode)
		assert.Contains(t, string(body), `"count":2`)
	})
}

func TestStudentHandler(t *testing.T) {
	image := bytes.Repeat([]byte{0xFF}, 2048)

	t.Run("enroll", func(t *testing.T) {
		s := newTestServer()
		classroomID := uuid.New()
		s.enrollment.On("Enroll", mock.Anything, s.teacherID, classroomID, "07", "Davi", image).Return(&domain.Student{
			ID:          uuid.New(),
			ClassroomID: classroomID,
			RollNumber:  "07",
			Name:        "Davi",
			Embeddings:  []domain.Embedding{{1, 0}},
		}, nil)

		resp, body := s.do(t, multipartRequest(t, "/classrooms/"+classroomID.String()+"/students",
			map[string]string{"roll_number": "07", "name": "Davi"}, image, "image/jpeg"))
		require.Equal(t, 201, resp.StatusCode, string(body))
		assert.Contains(t, string(body), `"sample_count":1`)
		assert.NotContains(t, string(body), "embeddings")
	})

	t.Run("enroll requires roll number and name", func(t *testing.T) {
		s := newTestServer()

		resp, _ := s.do(t, multipartRequest(t, "/classrooms/"+uuid.NewString()+"/students",
			map[string]string{"name": "Davi"}, image, "image/jpeg"))
		assert.Equal(t, 422, resp.StatusCode)
	})

	t.Run("enroll rejects group photos", func(t *testing.T) {
		s := newTestServer()
		classroomID := uuid.New()
		s.enrollment.On("Enroll", mock.Anything, s.teacherID, classroomID, "07", "Davi", image).Return(nil, domain.ErrMultipleFaces)

		resp, body := s.do(t, multipartRequest(t, "/classrooms/"+classroomID.String()+"/students",
			map[string]string{"roll_number": "07", "name": "Davi"}, image, "image/jpeg"))
		assert.Equal(t, 422, resp.StatusCode)
		assert.Equal(t, "MULTIPLE_FACES", errorCode(t, body))
	})

	t.Run("add photo", func(t *testing.T) {
		s := newTestServer()
		studentID := uuid.New()
		s.enrollment.On("AddPhoto", mock.Anything, s.teacherID, studentID, image, false).
			Return(training.Result{StudentID: studentID, Count: 2, Capacity: 10}, nil)

		resp, body := s.do(t, multipartRequest(t, "/students/"+studentID.String()+"/photos", nil, image, "image/webp"))
		assert.Equal(t, 200, resp.StatusCode)
		assert.Contains(t, string(body), `"sample_count":2`)
	})

	t.Run("verify", func(t *testing.T) {
		s := newTestServer()
		studentID := uuid.New()
		s.enrollment.On("Verify", mock.Anything, s.teacherID, studentID, image).Return(&matcher.Verification{
			StudentID:  studentID,
			Verified:   true,
			Distance:   0.3,
			Threshold:  0.6,
			Confidence: 63,
			Samples:    2,
		}, nil)

		resp, body := s.do(t, multipartRequest(t, "/students/"+studentID.String()+"/verify", nil, image, "image/jpeg"))
		require.Equal(t, 200, resp.StatusCode, string(body))

		var out matcher.Verification
		require.NoError(t, json.Unmarshal(body, &out))
		assert.True(t, out.Verified)
		assert.Equal(t, 0.3, out.Distance)
		assert.Equal(t, 0.6, out.Threshold)
		assert.Equal(t, 63, out.Confidence)
	})

	t.Run("verify student of another teacher", func(t *testing.T) {
		s := newTestServer()
		studentID := uuid.New()
		s.enrollment.On("Verify", mock.Anything, s.teacherID, studentID, image).Return(nil, domain.ErrStudentNotFound)

		resp, body := s.do(t, multipartRequest(t, "/students/"+studentID.String()+"/verify", nil, image, "image/jpeg"))
		assert.Equal(t, 404, resp.StatusCode)
		assert.Equal(t, "STUDENT_NOT_FOUND", errorCode(t, body))
	})

	t.Run("verify requires an image", func(t *testing.T) {
		s := newTestServer()

		resp, _ := s.do(t, multipartRequest(t, "/students/"+uuid.NewString()+"/verify", nil, nil, ""))
		assert.Equal(t, 422, resp.StatusCode)
		s.enrollment.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("strict sample at capacity", func(t *testing.T) {
		s := newTestServer()
		studentID := uuid.New()
		s.enrollment.On("AddTrainingSample", mock.Anything, s.teacherID, studentID, domain.Embedding{0.1, 0.2}, true).
			Return(training.Result{}, domain.ErrTrainingCapacityReached)

		resp, body := s.do(t, jsonRequest(t, "POST", "/students/"+studentID.String()+"/samples?strict=true",
			SampleRequest{Embedding: domain.Embedding{0.1, 0.2}}))
		assert.Equal(t, 409, resp.StatusCode)
		assert.Equal(t, "TRAINING_CAPACITY_REACHED", errorCode(t, body))
	})

	t.Run("reset samples", func(t *testing.T) {
		s := newTestServer()
		studentID := uuid.New()
		s.enrollment.On("ResetTrainingSamples", mock.Anything, s.teacherID, studentID).
			Return(training.Result{StudentID: studentID, Count: 1, Evicted: 5, Capacity: 10}, nil)

		resp, body := s.do(t, httptest.NewRequest("DELETE", "/students/"+studentID.String()+"/samples", nil))
		assert.Equal(t, 200, resp.StatusCode)
		assert.Contains(t, string(body), `"evicted":5`)
	})
}
