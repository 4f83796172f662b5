package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

// ClassroomRequest is the body of POST /classrooms
type ClassroomRequest struct {
	Name string `json:"name" example:"5º ano A"`
}

// ClassroomResponse represents one classroom
type ClassroomResponse struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TeacherID string `json:"teacher_id" example:"8d1f3c52-3d5e-4a61-9a1e-4f0b6b2a9e11"`
	Name      string `json:"name" example:"5º ano A"`
	CreatedAt string `json:"created_at" example:"2026-03-09T12:00:00Z"`
}

// ClassroomListResponse is the body of GET /classrooms
type ClassroomListResponse struct {
	Classrooms []ClassroomResponse `json:"classrooms"`
}

// CandidateDoc is the student proposed for a face
type CandidateDoc struct {
	StudentID  string  `json:"student_id" example:"4b0e1a2c-1111-4c2e-9a55-0d3b7c9e2f10"`
	RollNumber string  `json:"roll_number" example:"07"`
	Name       string  `json:"name" example:"Davi Souza"`
	Distance   float64 `json:"distance" example:"0.41"`
	Confidence int     `json:"confidence" example:"59"`
}

// BoxDoc is a face region in image pixels
type BoxDoc struct {
	X      float64 `json:"x" example:"120"`
	Y      float64 `json:"y" example:"80"`
	Width  float64 `json:"width" example:"64"`
	Height float64 `json:"height" example:"64"`
}

// FaceDoc is one detected face and its review state
type FaceDoc struct {
	Index         int           `json:"index" example:"0"`
	Box           BoxDoc        `json:"box"`
	Embedding     []float64     `json:"embedding"`
	Candidate     *CandidateDoc `json:"candidate,omitempty"`
	Nearest       *CandidateDoc `json:"nearest,omitempty"`
	State         string        `json:"state" example:"pending"`
	AddToTraining bool          `json:"add_to_training" example:"false"`
	DuplicateOf   *int          `json:"duplicate_of,omitempty"`
	Ambiguous     bool          `json:"ambiguous,omitempty" example:"false"`
}

// SummaryDoc counts faces per review state
type SummaryDoc struct {
	Pending   int `json:"pending" example:"3"`
	Confirmed int `json:"confirmed" example:"20"`
	Corrected int `json:"corrected" example:"1"`
	Skipped   int `json:"skipped" example:"0"`
}

// SessionDoc is the review session returned by detection and review
type SessionDoc struct {
	ID              string     `json:"id" example:"0f8fad5b-d9cb-469f-a165-70867728950e"`
	ClassroomID     string     `json:"classroom_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Outcome         string     `json:"outcome" example:"recognized"`
	FaceCount       int        `json:"face_count" example:"24"`
	RecognizedCount int        `json:"recognized_count" example:"21"`
	Faces           []FaceDoc  `json:"faces"`
	CreatedAt       string     `json:"created_at" example:"2026-03-09T12:00:00Z"`
	Summary         SummaryDoc `json:"summary"`
}

// ActionDoc is one review action
type ActionDoc struct {
	Type      string `json:"type" example:"confirm"`
	FaceIndex int    `json:"face_index" example:"0"`
	Train     bool   `json:"train,omitempty" example:"false"`
}

// ReviewRequestDoc is the body of POST /sessions/review
type ReviewRequestDoc struct {
	Session SessionDoc  `json:"session"`
	Actions []ActionDoc `json:"actions"`
}

// DecisionDoc is the final verdict for one face
type DecisionDoc struct {
	FaceIndex     int       `json:"face_index" example:"0"`
	Action        string    `json:"action" example:"confirm"`
	StudentID     string    `json:"student_id,omitempty" example:"4b0e1a2c-1111-4c2e-9a55-0d3b7c9e2f10"`
	AddToTraining bool      `json:"add_to_training" example:"true"`
	Embedding     []float64 `json:"embedding,omitempty"`
}

// ConfirmRequestDoc carries either a reviewed session or raw decisions
type ConfirmRequestDoc struct {
	Session   *SessionDoc   `json:"session,omitempty"`
	Decisions []DecisionDoc `json:"decisions,omitempty"`
}

// MarkedStudentDoc identifies a student affected by a commit
type MarkedStudentDoc struct {
	StudentID  string `json:"student_id" example:"4b0e1a2c-1111-4c2e-9a55-0d3b7c9e2f10"`
	RollNumber string `json:"roll_number" example:"07"`
	Name       string `json:"name" example:"Davi Souza"`
}

// SkippedDoc is a decision that produced no mark
type SkippedDoc struct {
	FaceIndex int    `json:"face_index" example:"3"`
	Reason    string `json:"reason" example:"student not found in classroom"`
}

// ConfirmationDoc is the outcome of a commit
type ConfirmationDoc struct {
	Marked         []MarkedStudentDoc `json:"marked"`
	AlreadyPresent []MarkedStudentDoc `json:"already_present"`
	Skipped        []SkippedDoc       `json:"skipped"`
	MarkedCount    int                `json:"marked_count" example:"20"`
	TrainedCount   int                `json:"trained_count" example:"2"`
	Message        string             `json:"message" example:"20 marked present, 2 training samples added"`
}

// MarkRequestDoc is the body of a manual mark
type MarkRequestDoc struct {
	StudentID string `json:"student_id" example:"4b0e1a2c-1111-4c2e-9a55-0d3b7c9e2f10"`
}

// AttendanceRecordDoc is one presence record
type AttendanceRecordDoc struct {
	ID          string `json:"id" example:"6a2f41a3-c54c-fce8-32d2-0324e1c32e22"`
	ClassroomID string `json:"classroom_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TeacherID   string `json:"teacher_id" example:"8d1f3c52-3d5e-4a61-9a1e-4f0b6b2a9e11"`
	StudentID   string `json:"student_id" example:"4b0e1a2c-1111-4c2e-9a55-0d3b7c9e2f10"`
	RollNumber  string `json:"roll_number" example:"07"`
	StudentName string `json:"student_name" example:"Davi Souza"`
	Date        string `json:"date" example:"2026-03-09T00:00:00Z"`
	Source      string `json:"source" example:"photo"`
	MarkedAt    string `json:"marked_at" example:"2026-03-09T12:01:00Z"`
}

// MarkResponseDoc is the result of a manual mark
type MarkResponseDoc struct {
	Record  AttendanceRecordDoc `json:"record"`
	Created bool                `json:"created" example:"true"`
}

// AttendanceListDoc is the body of GET /classrooms/{id}/attendance
type AttendanceListDoc struct {
	Records []AttendanceRecordDoc `json:"records"`
	Count   int                   `json:"count" example:"21"`
}

// StudentDoc is an enrolled student
type StudentDoc struct {
	ID          string `json:"id" example:"4b0e1a2c-1111-4c2e-9a55-0d3b7c9e2f10"`
	ClassroomID string `json:"classroom_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TeacherID   string `json:"teacher_id" example:"8d1f3c52-3d5e-4a61-9a1e-4f0b6b2a9e11"`
	RollNumber  string `json:"roll_number" example:"07"`
	Name        string `json:"name" example:"Davi Souza"`
	SampleCount int    `json:"sample_count" example:"1"`
	CreatedAt   string `json:"created_at" example:"2026-03-09T12:00:00Z"`
	UpdatedAt   string `json:"updated_at" example:"2026-03-09T12:00:00Z"`
}

// SampleRequestDoc is the body of POST /students/{id}/samples
type SampleRequestDoc struct {
	Embedding []float64 `json:"embedding"`
}

// TrainingResultDoc reports a student's samples after an update
type TrainingResultDoc struct {
	StudentID   string `json:"student_id" example:"4b0e1a2c-1111-4c2e-9a55-0d3b7c9e2f10"`
	SampleCount int    `json:"sample_count" example:"10"`
	Evicted     int    `json:"evicted" example:"1"`
	Capacity    int    `json:"capacity" example:"10"`
}

// VerificationDoc is the result of a one-to-one student check
type VerificationDoc struct {
	StudentID  string  `json:"student_id" example:"4b0e1a2c-1111-4c2e-9a55-0d3b7c9e2f10"`
	Verified   bool    `json:"verified" example:"true"`
	Distance   float64 `json:"distance" example:"0.31"`
	Threshold  float64 `json:"threshold" example:"0.6"`
	Confidence int     `json:"confidence" example:"61"`
	Samples    int     `json:"samples" example:"4"`
}

// FaceDiagnosisDoc explains the match decision for one face
type FaceDiagnosisDoc struct {
	FaceIndex       int            `json:"face_index" example:"0"`
	BoundingBox     BoxDoc         `json:"bounding_box"`
	Candidates      []CandidateDoc `json:"candidates"`
	Recognized      bool           `json:"recognized" example:"false"`
	Confidence      int            `json:"confidence" example:"0"`
	Threshold       float64        `json:"threshold" example:"0.6"`
	Gap             *float64       `json:"gap,omitempty" example:"0.02"`
	RequiredGap     float64        `json:"required_gap" example:"0.05"`
	Ambiguous       bool           `json:"ambiguous" example:"true"`
	Recommendations []string       `json:"recommendations"`
}

// DiagnosisDoc is the body of POST /classrooms/{id}/diagnose
type DiagnosisDoc struct {
	ClassroomID     string             `json:"classroom_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EnrolledCount   int                `json:"enrolled_count" example:"24"`
	Faces           []FaceDiagnosisDoc `json:"faces"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

var (
	errUnauthorized = response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Missing or invalid bearer token"}, "401", "Unauthorized")
	errForbidden    = response.New(ErrorResponse{Code: "UNAUTHORIZED_CLASSROOM", Message: "Classroom does not belong to this teacher"}, "403", "Forbidden")
	errValidation   = response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity")
	errRateLimit    = response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded"}, "429", "Too Many Requests")
	errInternal     = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")
	errUnavailable  = response.New(ErrorResponse{Code: "EMBEDDING_SERVICE_UNAVAILABLE", Message: "Face recognition service is unavailable"}, "503", "Service Unavailable")
	errTimeout      = response.New(ErrorResponse{Code: "EMBEDDING_SERVICE_TIMEOUT", Message: "Face recognition service timed out"}, "504", "Gateway Timeout")

	bearerAuth = endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}})

	classroomParam = parameter.StrParam("classroom_id", parameter.Path, parameter.WithDescription("Classroom UUID"))
	studentParam   = parameter.StrParam("student_id", parameter.Path, parameter.WithDescription("Student UUID"))
	dateParam      = parameter.StrParam("date", parameter.Query, parameter.WithDescription("Attendance day as YYYY-MM-DD (default: today in ATTENDANCE_TIMEZONE)"))
	strictParam    = parameter.StrParam("strict", parameter.Query, parameter.WithDescription("When true, fail with TRAINING_CAPACITY_REACHED instead of evicting the oldest sample"))
)

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Chamada Attendance API",
		Version:     "v1.0.0",
		Description: "Photo roll call: detect and match a classroom's faces, review the matches and record attendance",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// Classrooms

		// POST /v1/classrooms - Create classroom
		endpoint.New(
			endpoint.POST,
			"/classrooms",
			endpoint.WithTags("Classrooms"),
			endpoint.WithSummary("Create a classroom"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(ClassroomRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ClassroomResponse{}, "201", "Classroom created"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errValidation, errInternal}),
			bearerAuth,
		),

		// GET /v1/classrooms - List classrooms
		endpoint.New(
			endpoint.GET,
			"/classrooms",
			endpoint.WithTags("Classrooms"),
			endpoint.WithSummary("List the teacher's classrooms"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ClassroomListResponse{}, "200", "Classrooms retrieved"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errInternal}),
			bearerAuth,
		),

		// Detection and review

		// POST /v1/classrooms/:classroom_id/detections - Detect and match
		endpoint.New(
			endpoint.POST,
			"/classrooms/{classroom_id}/detections",
			endpoint.WithTags("Detection"),
			endpoint.WithSummary("Detect and match the faces of a classroom photo"),
			endpoint.WithDescription("Upload the photo as the multipart field 'image' (JPEG, PNG or WebP, up to 10MB). Returns a review session ordered top to bottom, left to right. Nothing is stored."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(classroomParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionDoc{}, "200", "Detection completed"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				errForbidden,
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "NO_ENROLLED_FACES", Message: "Classroom has no enrolled students"}, "422", "Unprocessable Entity"),
				errRateLimit,
				errUnavailable,
				errTimeout,
			}),
			bearerAuth,
		),

		// POST /v1/classrooms/:classroom_id/diagnose - Diagnose a photo
		endpoint.New(
			endpoint.POST,
			"/classrooms/{classroom_id}/diagnose",
			endpoint.WithTags("Detection"),
			endpoint.WithSummary("Explain why faces were or were not recognized"),
			endpoint.WithDescription("Same upload as detections. Returns the top candidates per face with threshold and gap diagnostics and recommendations."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(classroomParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DiagnosisDoc{}, "200", "Diagnosis completed"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errForbidden, errValidation, errUnavailable, errTimeout}),
			bearerAuth,
		),

		// POST /v1/sessions/review - Apply review actions
		endpoint.New(
			endpoint.POST,
			"/sessions/review",
			endpoint.WithTags("Detection"),
			endpoint.WithSummary("Apply review actions to a session"),
			endpoint.WithDescription("Actions: confirm, toggle, correct, skip, undo, confirm_all, train. Applied in order; the first invalid action fails the request."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(ReviewRequestDoc{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionDoc{}, "200", "Updated session"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "INVALID_TRANSITION", Message: "Review action is not allowed in the current state"}, "409", "Conflict"),
				errValidation,
			}),
			bearerAuth,
		),

		// Attendance

		// POST /v1/classrooms/:classroom_id/attendance/confirm - Commit decisions
		endpoint.New(
			endpoint.POST,
			"/classrooms/{classroom_id}/attendance/confirm",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Record attendance from reviewed decisions"),
			endpoint.WithDescription("Marks every confirmed or corrected face present for today and adds training samples where requested. Failures are reported per decision."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(classroomParam),
			endpoint.WithBody(ConfirmRequestDoc{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ConfirmationDoc{}, "200", "Decisions applied"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errForbidden, errValidation, errInternal}),
			bearerAuth,
		),

		// POST /v1/classrooms/:classroom_id/attendance - Manual mark
		endpoint.New(
			endpoint.POST,
			"/classrooms/{classroom_id}/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Mark a student present manually"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(classroomParam),
			endpoint.WithBody(MarkRequestDoc{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(MarkResponseDoc{}, "201", "Marked present"),
				response.New(MarkResponseDoc{}, "200", "Already present today"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				errForbidden,
				response.New(ErrorResponse{Code: "STUDENT_NOT_FOUND", Message: "Student not found"}, "404", "Not Found"),
				errValidation,
			}),
			bearerAuth,
		),

		// GET /v1/classrooms/:classroom_id/attendance - List a day
		endpoint.New(
			endpoint.GET,
			"/classrooms/{classroom_id}/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("List the students marked present on a day"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(classroomParam, dateParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceListDoc{}, "200", "Attendance retrieved"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errForbidden, errValidation}),
			bearerAuth,
		),

		// DELETE /v1/classrooms/:classroom_id/attendance/:student_id - Unmark
		endpoint.New(
			endpoint.DELETE,
			"/classrooms/{classroom_id}/attendance/{student_id}",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Remove a presence record"),
			endpoint.WithParams(classroomParam, studentParam, dateParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Presence removed"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				errForbidden,
				response.New(ErrorResponse{Code: "ATTENDANCE_NOT_FOUND", Message: "Attendance record not found"}, "404", "Not Found"),
			}),
			bearerAuth,
		),

		// Students

		// POST /v1/classrooms/:classroom_id/students - Enroll
		endpoint.New(
			endpoint.POST,
			"/classrooms/{classroom_id}/students",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Enroll a student with a reference photo"),
			endpoint.WithDescription("Multipart fields: roll_number, name and image. The photo must contain exactly one face."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(classroomParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StudentDoc{}, "201", "Student enrolled"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				errForbidden,
				response.New(ErrorResponse{Code: "STUDENT_ALREADY_EXISTS", Message: "Roll number already enrolled"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "MULTIPLE_FACES", Message: "Multiple faces detected"}, "422", "Unprocessable Entity"),
				errUnavailable,
			}),
			bearerAuth,
		),

		// POST /v1/students/:student_id/photos - Add a photo sample
		endpoint.New(
			endpoint.POST,
			"/students/{student_id}/photos",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Add a training sample from a photo"),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(studentParam, strictParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(TrainingResultDoc{}, "200", "Sample added"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "STUDENT_NOT_FOUND", Message: "Student not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "TRAINING_CAPACITY_REACHED", Message: "Student already has the maximum number of training samples"}, "409", "Conflict"),
				errValidation,
			}),
			bearerAuth,
		),

		// POST /v1/students/:student_id/verify - One-to-one check
		endpoint.New(
			endpoint.POST,
			"/students/{student_id}/verify",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Check whether a photo shows the given student"),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(studentParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerificationDoc{}, "200", "Verification result"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "STUDENT_NOT_FOUND", Message: "Student not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "NO_ENROLLED_FACES", Message: "Student has no samples comparable with this photo"}, "422", "Unprocessable Entity"),
				errValidation,
				errUnavailable,
			}),
			bearerAuth,
		),

		// POST /v1/students/:student_id/samples - Add an embedding sample
		endpoint.New(
			endpoint.POST,
			"/students/{student_id}/samples",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Add a training sample from an embedding"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(studentParam, strictParam),
			endpoint.WithBody(SampleRequestDoc{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(TrainingResultDoc{}, "200", "Sample added"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "INVALID_EMBEDDING", Message: "Embedding is invalid"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "CONCURRENT_MODIFICATION", Message: "Student was modified concurrently, try again"}, "409", "Conflict"),
			}),
			bearerAuth,
		),

		// DELETE /v1/students/:student_id/samples - Reset samples
		endpoint.New(
			endpoint.DELETE,
			"/students/{student_id}/samples",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Drop every training sample except the latest"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(studentParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(TrainingResultDoc{}, "200", "Samples reset"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errInternal}),
			bearerAuth,
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
