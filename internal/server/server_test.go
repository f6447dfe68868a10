package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/medmatch/internal/auth"
	"github.com/wolfeidau/medmatch/internal/blob"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/store/memory"
)

type testEnv struct {
	server       *Server
	handler      http.Handler
	accounts     *memory.AccountStore
	profiles     *memory.ProfileStore
	clinics      *memory.ClinicStore
	positions    *memory.PositionStore
	applications *memory.ApplicationStore
	documents    *memory.DocumentStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	accounts := memory.NewAccountStore()
	profiles := memory.NewProfileStore()
	clinics := memory.NewClinicStore()
	positions := memory.NewPositionStore()
	applications := memory.NewApplicationStore(positions)
	documents := memory.NewDocumentStore(applications)

	blobs, err := blob.NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	srv := New(Config{
		Accounts:     accounts,
		Profiles:     profiles,
		Clinics:      clinics,
		Positions:    positions,
		Applications: applications,
		Documents:    documents,
		Blobs:        blobs,
	})

	return &testEnv{
		server:       srv,
		handler:      srv.Routes(),
		accounts:     accounts,
		profiles:     profiles,
		clinics:      clinics,
		positions:    positions,
		applications: applications,
		documents:    documents,
	}
}

// do executes a request as the given account, bypassing the HTTP auth
// middleware the way the wiring does in production.
func (e *testEnv) do(t *testing.T, account *models.Account, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if account != nil {
		req = req.WithContext(auth.ContextWithAccount(req.Context(), account))
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (e *testEnv) newAccount(t *testing.T, subject string, role *models.Role, clinicID *uuid.UUID) *models.Account {
	t.Helper()
	account := &models.Account{
		AccountID: uuid.Must(uuid.NewV7()),
		Subject:   subject,
		Email:     subject + "@example.com",
		Name:      "Test " + subject,
		Role:      role,
		ClinicID:  clinicID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, e.accounts.Create(context.Background(), account))
	return account
}

func (e *testEnv) newClinic(t *testing.T, name string) *models.Clinic {
	t.Helper()
	clinic := &models.Clinic{
		ClinicID:  uuid.Must(uuid.NewV7()),
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, e.clinics.Create(context.Background(), clinic))
	return clinic
}

func (e *testEnv) newStudent(t *testing.T, subject string) (*models.Account, *models.StudentProfile) {
	t.Helper()
	role := models.RoleStudent
	account := e.newAccount(t, subject, &role, nil)

	profile := &models.StudentProfile{
		ProfileID:   uuid.Must(uuid.NewV7()),
		AccountID:   account.AccountID,
		University:  "Test University",
		YearOfStudy: 4,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, e.profiles.Create(context.Background(), profile))
	return account, profile
}

func (e *testEnv) newPosition(t *testing.T, clinicID uuid.UUID, status models.PositionStatus) *models.Position {
	t.Helper()
	position := &models.Position{
		PositionID:          uuid.Must(uuid.NewV7()),
		ClinicID:            clinicID,
		Title:               "Cardiology Internship",
		Description:         "Six month rotation",
		Specialty:           "cardiology",
		DurationMonths:      6,
		StartDate:           time.Now().AddDate(0, 3, 0),
		ApplicationDeadline: time.Now().AddDate(0, 1, 0),
		Status:              status,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}
	require.NoError(t, e.positions.Create(context.Background(), position))
	return position
}

func roleOf(r models.Role) *models.Role {
	return &r
}

func TestGetAccount(t *testing.T) {
	env := newTestEnv(t)

	t.Run("roleless account can read itself", func(t *testing.T) {
		account := env.newAccount(t, "fresh", nil, nil)

		rec := env.do(t, account, http.MethodGet, "/api/account", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[accountResponse](t, rec)
		require.Equal(t, account.AccountID, resp.AccountID)
		require.Nil(t, resp.Role)
	})
}

func TestSetAccountRole(t *testing.T) {
	t.Run("student role", func(t *testing.T) {
		env := newTestEnv(t)
		account := env.newAccount(t, "stu", nil, nil)

		rec := env.do(t, account, http.MethodPost, "/api/account/role", setRoleRequest{Role: "student"})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[accountResponse](t, rec)
		require.NotNil(t, resp.Role)
		require.Equal(t, "student", *resp.Role)
	})

	t.Run("second set is forbidden and role unchanged", func(t *testing.T) {
		env := newTestEnv(t)
		account := env.newAccount(t, "once", nil, nil)

		rec := env.do(t, account, http.MethodPost, "/api/account/role", setRoleRequest{Role: "student"})
		require.Equal(t, http.StatusOK, rec.Code)

		name := "Sneaky Clinic"
		rec = env.do(t, account, http.MethodPost, "/api/account/role", setRoleRequest{Role: "clinic_admin", ClinicName: &name})
		require.Equal(t, http.StatusForbidden, rec.Code)

		stored, err := env.accounts.Get(context.Background(), account.AccountID)
		require.NoError(t, err)
		require.True(t, stored.HasRole(models.RoleStudent))
	})

	t.Run("clinic_admin creates and links a clinic", func(t *testing.T) {
		env := newTestEnv(t)
		account := env.newAccount(t, "founder", nil, nil)

		name := "New Clinic"
		rec := env.do(t, account, http.MethodPost, "/api/account/role", setRoleRequest{Role: "clinic_admin", ClinicName: &name})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[accountResponse](t, rec)
		require.NotNil(t, resp.ClinicID)

		clinic, err := env.clinics.Get(context.Background(), *resp.ClinicID)
		require.NoError(t, err)
		require.Equal(t, "New Clinic", clinic.Name)
	})

	t.Run("clinic_member requires existing clinic", func(t *testing.T) {
		env := newTestEnv(t)
		account := env.newAccount(t, "member", nil, nil)

		missing := uuid.Must(uuid.NewV7())
		rec := env.do(t, account, http.MethodPost, "/api/account/role", setRoleRequest{Role: "clinic_member", ClinicID: &missing})
		require.Equal(t, http.StatusNotFound, rec.Code)

		clinic := env.newClinic(t, "Joinable")
		rec = env.do(t, account, http.MethodPost, "/api/account/role", setRoleRequest{Role: "clinic_member", ClinicID: &clinic.ClinicID})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin role cannot be self-assigned", func(t *testing.T) {
		env := newTestEnv(t)
		account := env.newAccount(t, "wannabe", nil, nil)

		rec := env.do(t, account, http.MethodPost, "/api/account/role", setRoleRequest{Role: "admin"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		env := newTestEnv(t)
		account := env.newAccount(t, "odd", nil, nil)

		rec := env.do(t, account, http.MethodPost, "/api/account/role", setRoleRequest{Role: "superuser"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProfileUpsert(t *testing.T) {
	env := newTestEnv(t)
	account := env.newAccount(t, "profiled", roleOf(models.RoleStudent), nil)

	t.Run("read before create is not found", func(t *testing.T) {
		rec := env.do(t, account, http.MethodGet, "/api/profile", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("first put creates", func(t *testing.T) {
		rec := env.do(t, account, http.MethodPut, "/api/profile", putProfileRequest{University: "State Medical", YearOfStudy: 3})
		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("second put updates in place", func(t *testing.T) {
		rec := env.do(t, account, http.MethodPut, "/api/profile", putProfileRequest{University: "Other Medical", YearOfStudy: 4})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[profileResponse](t, rec)
		require.Equal(t, "Other Medical", resp.University)
		require.Equal(t, 4, resp.YearOfStudy)
	})

	t.Run("validation", func(t *testing.T) {
		rec := env.do(t, account, http.MethodPut, "/api/profile", putProfileRequest{University: "", YearOfStudy: 2})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("roleless account denied", func(t *testing.T) {
		fresh := env.newAccount(t, "noprofile", nil, nil)
		rec := env.do(t, fresh, http.MethodGet, "/api/profile", nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestPositionBrowse(t *testing.T) {
	env := newTestEnv(t)
	clinic := env.newClinic(t, "Browse Clinic")
	active := env.newPosition(t, clinic.ClinicID, models.PositionStatusActive)
	env.newPosition(t, clinic.ClinicID, models.PositionStatusDraft)

	student := env.newAccount(t, "browser", roleOf(models.RoleStudent), nil)

	t.Run("browse shows active only", func(t *testing.T) {
		rec := env.do(t, student, http.MethodGet, "/api/positions", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[[]positionResponse](t, rec)
		require.Len(t, resp, 1)
		require.Equal(t, active.PositionID, resp[0].PositionID)
	})

	t.Run("roleless account cannot browse", func(t *testing.T) {
		fresh := env.newAccount(t, "norole", nil, nil)
		rec := env.do(t, fresh, http.MethodGet, "/api/positions", nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("get by id", func(t *testing.T) {
		rec := env.do(t, student, http.MethodGet, "/api/positions/"+active.PositionID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, student, http.MethodGet, "/api/positions/"+uuid.Must(uuid.NewV7()).String(), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPositionMutations(t *testing.T) {
	env := newTestEnv(t)
	clinic := env.newClinic(t, "Owner Clinic")
	other := env.newClinic(t, "Other Clinic")

	admin := env.newAccount(t, "clinic-admin", roleOf(models.RoleClinicAdmin), &clinic.ClinicID)
	member := env.newAccount(t, "clinic-member", roleOf(models.RoleClinicMember), &clinic.ClinicID)
	rival := env.newAccount(t, "rival-admin", roleOf(models.RoleClinicAdmin), &other.ClinicID)
	student := env.newAccount(t, "student", roleOf(models.RoleStudent), nil)

	valid := positionRequest{
		Title:               "Surgery Internship",
		Description:         "Rotation",
		Specialty:           "surgery",
		DurationMonths:      3,
		StartDate:           time.Now().AddDate(0, 2, 0),
		ApplicationDeadline: time.Now().AddDate(0, 1, 0),
	}

	var created positionResponse

	t.Run("clinic_admin creates", func(t *testing.T) {
		rec := env.do(t, admin, http.MethodPost, "/api/positions", valid)
		require.Equal(t, http.StatusCreated, rec.Code)

		created = decodeBody[positionResponse](t, rec)
		require.Equal(t, clinic.ClinicID, created.ClinicID)
		require.Equal(t, "active", created.Status)
	})

	t.Run("student cannot create", func(t *testing.T) {
		rec := env.do(t, student, http.MethodPost, "/api/positions", valid)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("clinic_member cannot create", func(t *testing.T) {
		rec := env.do(t, member, http.MethodPost, "/api/positions", valid)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing dates rejected", func(t *testing.T) {
		invalid := valid
		invalid.StartDate = time.Time{}
		rec := env.do(t, admin, http.MethodPost, "/api/positions", invalid)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("cross-clinic update forbidden, row unchanged", func(t *testing.T) {
		update := valid
		update.Title = "Hijacked"
		rec := env.do(t, rival, http.MethodPut, "/api/positions/"+created.PositionID.String(), update)
		require.Equal(t, http.StatusForbidden, rec.Code)

		stored, err := env.positions.Get(context.Background(), created.PositionID)
		require.NoError(t, err)
		require.Equal(t, "Surgery Internship", stored.Title)
	})

	t.Run("update of missing position also forbidden", func(t *testing.T) {
		rec := env.do(t, rival, http.MethodPut, "/api/positions/"+uuid.Must(uuid.NewV7()).String(), valid)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner updates", func(t *testing.T) {
		update := valid
		update.Title = "Updated Internship"
		update.Status = "closed"
		rec := env.do(t, admin, http.MethodPut, "/api/positions/"+created.PositionID.String(), update)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[positionResponse](t, rec)
		require.Equal(t, "Updated Internship", resp.Title)
		require.Equal(t, "closed", resp.Status)
	})

	t.Run("cross-clinic delete forbidden", func(t *testing.T) {
		rec := env.do(t, rival, http.MethodDelete, "/api/positions/"+created.PositionID.String(), nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner deletes", func(t *testing.T) {
		rec := env.do(t, admin, http.MethodDelete, "/api/positions/"+created.PositionID.String(), nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestClinicEndpoints(t *testing.T) {
	env := newTestEnv(t)
	clinic := env.newClinic(t, "My Clinic")
	other := env.newClinic(t, "Foreign Clinic")

	admin := env.newAccount(t, "ca", roleOf(models.RoleClinicAdmin), &clinic.ClinicID)
	member := env.newAccount(t, "cm", roleOf(models.RoleClinicMember), &clinic.ClinicID)

	mine := env.newPosition(t, clinic.ClinicID, models.PositionStatusDraft)
	env.newPosition(t, other.ClinicID, models.PositionStatusActive)

	t.Run("member reads clinic", func(t *testing.T) {
		rec := env.do(t, member, http.MethodGet, "/api/clinic", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[clinicResponse](t, rec)
		require.Equal(t, clinic.ClinicID, resp.ClinicID)
	})

	t.Run("member cannot update clinic", func(t *testing.T) {
		rec := env.do(t, member, http.MethodPut, "/api/clinic", updateClinicRequest{Name: "Renamed"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin updates clinic", func(t *testing.T) {
		rec := env.do(t, admin, http.MethodPut, "/api/clinic", updateClinicRequest{Name: "Renamed"})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[clinicResponse](t, rec)
		require.Equal(t, "Renamed", resp.Name)
	})

	t.Run("clinic positions include drafts but only own clinic", func(t *testing.T) {
		rec := env.do(t, member, http.MethodGet, "/api/clinic/positions", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[[]positionResponse](t, rec)
		require.Len(t, resp, 1)
		require.Equal(t, mine.PositionID, resp[0].PositionID)
	})
}

func TestApplicationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	clinic := env.newClinic(t, "Hiring Clinic")
	other := env.newClinic(t, "Other Clinic")
	position := env.newPosition(t, clinic.ClinicID, models.PositionStatusActive)

	student, _ := env.newStudent(t, "applicant")
	clinicAdmin := env.newAccount(t, "reviewer", roleOf(models.RoleClinicAdmin), &clinic.ClinicID)
	rivalAdmin := env.newAccount(t, "rival", roleOf(models.RoleClinicAdmin), &other.ClinicID)

	var created applicationResponse

	t.Run("student applies", func(t *testing.T) {
		rec := env.do(t, student, http.MethodPost, "/api/applications", createApplicationRequest{PositionID: position.PositionID})
		require.Equal(t, http.StatusCreated, rec.Code)

		created = decodeBody[applicationResponse](t, rec)
		require.Equal(t, "pending", created.Status)
	})

	t.Run("duplicate application conflicts", func(t *testing.T) {
		rec := env.do(t, student, http.MethodPost, "/api/applications", createApplicationRequest{PositionID: position.PositionID})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("application without profile", func(t *testing.T) {
		bare := env.newAccount(t, "bare-student", roleOf(models.RoleStudent), nil)
		rec := env.do(t, bare, http.MethodPost, "/api/applications", createApplicationRequest{PositionID: position.PositionID})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("application to closed position", func(t *testing.T) {
		closed := env.newPosition(t, clinic.ClinicID, models.PositionStatusClosed)
		rec := env.do(t, student, http.MethodPost, "/api/applications", createApplicationRequest{PositionID: closed.PositionID})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("clinic cannot apply", func(t *testing.T) {
		rec := env.do(t, clinicAdmin, http.MethodPost, "/api/applications", createApplicationRequest{PositionID: position.PositionID})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("applicant edits pending cover letter", func(t *testing.T) {
		letter := "Dear committee"
		rec := env.do(t, student, http.MethodPut, "/api/applications/"+created.ApplicationID.String(), updateApplicationRequest{CoverLetter: &letter})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[applicationResponse](t, rec)
		require.NotNil(t, resp.CoverLetter)
		require.Equal(t, letter, *resp.CoverLetter)
	})

	t.Run("another student's application reads as not found", func(t *testing.T) {
		intruder, _ := env.newStudent(t, "intruder")
		letter := "mine"
		rec := env.do(t, intruder, http.MethodPut, "/api/applications/"+created.ApplicationID.String(), updateApplicationRequest{CoverLetter: &letter})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("wrong clinic review reads as not found", func(t *testing.T) {
		rec := env.do(t, rivalAdmin, http.MethodPut, "/api/applications/"+created.ApplicationID.String()+"/status", reviewApplicationRequest{Status: "accepted"})
		require.Equal(t, http.StatusNotFound, rec.Code)

		stored, err := env.applications.Get(context.Background(), created.ApplicationID)
		require.NoError(t, err)
		require.Equal(t, models.ApplicationStatusPending, stored.Status)
	})

	t.Run("invalid review status rejected", func(t *testing.T) {
		rec := env.do(t, clinicAdmin, http.MethodPut, "/api/applications/"+created.ApplicationID.String()+"/status", reviewApplicationRequest{Status: "pending"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("owning clinic reviews", func(t *testing.T) {
		notes := "strong candidate"
		rec := env.do(t, clinicAdmin, http.MethodPut, "/api/applications/"+created.ApplicationID.String()+"/status", reviewApplicationRequest{Status: "accepted", Notes: &notes})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[applicationResponse](t, rec)
		require.Equal(t, "accepted", resp.Status)
		require.NotNil(t, resp.ReviewedAt)
	})

	t.Run("reviewed application is frozen for the applicant", func(t *testing.T) {
		letter := "too late"
		rec := env.do(t, student, http.MethodPut, "/api/applications/"+created.ApplicationID.String(), updateApplicationRequest{CoverLetter: &letter})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = env.do(t, student, http.MethodDelete, "/api/applications/"+created.ApplicationID.String(), nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("pending application can be withdrawn", func(t *testing.T) {
		second := env.newPosition(t, clinic.ClinicID, models.PositionStatusActive)
		rec := env.do(t, student, http.MethodPost, "/api/applications", createApplicationRequest{PositionID: second.PositionID})
		require.Equal(t, http.StatusCreated, rec.Code)
		pending := decodeBody[applicationResponse](t, rec)

		rec = env.do(t, student, http.MethodDelete, "/api/applications/"+pending.ApplicationID.String(), nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("clinic lists its incoming applications", func(t *testing.T) {
		rec := env.do(t, clinicAdmin, http.MethodGet, "/api/clinic/applications", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[[]applicationResponse](t, rec)
		require.Len(t, resp, 1)
		require.Equal(t, created.ApplicationID, resp[0].ApplicationID)
	})
}

func multipartUpload(t *testing.T, filename, kind string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	require.NoError(t, mw.WriteField("kind", kind))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, account *models.Account, filename, kind string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, filename, kind, content)

	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(auth.ContextWithAccount(req.Context(), account))

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestDocumentUploadAndDownload(t *testing.T) {
	env := newTestEnv(t)
	clinic := env.newClinic(t, "Reading Clinic")
	unrelated := env.newClinic(t, "Unrelated Clinic")
	position := env.newPosition(t, clinic.ClinicID, models.PositionStatusActive)

	student, profile := env.newStudent(t, "uploader")
	clinicAdmin := env.newAccount(t, "doc-reader", roleOf(models.RoleClinicAdmin), &clinic.ClinicID)
	unrelatedAdmin := env.newAccount(t, "nosy", roleOf(models.RoleClinicAdmin), &unrelated.ClinicID)

	content := []byte("%PDF-1.4 curriculum vitae")
	var uploaded documentResponse

	t.Run("upload", func(t *testing.T) {
		rec := env.upload(t, student, "cv.pdf", "cv", content)
		require.Equal(t, http.StatusCreated, rec.Code)

		uploaded = decodeBody[documentResponse](t, rec)
		require.Equal(t, "cv.pdf", uploaded.Filename)
		require.Equal(t, int64(len(content)), uploaded.SizeBytes)
	})

	t.Run("disallowed extension", func(t *testing.T) {
		rec := env.upload(t, student, "malware.exe", "other", []byte("MZ"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid kind", func(t *testing.T) {
		rec := env.upload(t, student, "cv2.pdf", "resume", content)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upload without profile", func(t *testing.T) {
		bare := env.newAccount(t, "bare", roleOf(models.RoleStudent), nil)
		rec := env.upload(t, bare, "cv.pdf", "cv", content)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("owner downloads", func(t *testing.T) {
		rec := env.do(t, student, http.MethodGet, "/api/documents/"+uploaded.DocumentID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, content, rec.Body.Bytes())
	})

	t.Run("clinic without linkage cannot download", func(t *testing.T) {
		rec := env.do(t, clinicAdmin, http.MethodGet, "/api/documents/"+uploaded.DocumentID.String(), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("clinic with application linkage downloads", func(t *testing.T) {
		application := &models.Application{
			ApplicationID: uuid.Must(uuid.NewV7()),
			ProfileID:     profile.ProfileID,
			PositionID:    position.PositionID,
			Status:        models.ApplicationStatusPending,
			AppliedAt:     time.Now(),
		}
		require.NoError(t, env.applications.Create(context.Background(), application))

		rec := env.do(t, clinicAdmin, http.MethodGet, "/api/documents/"+uploaded.DocumentID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, content, rec.Body.Bytes())

		// Linkage is per clinic, not global
		rec = env.do(t, unrelatedAdmin, http.MethodGet, "/api/documents/"+uploaded.DocumentID.String(), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("another student's document reads as not found", func(t *testing.T) {
		intruder, _ := env.newStudent(t, "doc-intruder")
		rec := env.do(t, intruder, http.MethodGet, "/api/documents/"+uploaded.DocumentID.String(), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("owner lists documents", func(t *testing.T) {
		rec := env.do(t, student, http.MethodGet, "/api/documents", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[[]documentResponse](t, rec)
		require.Len(t, resp, 1)
	})

	t.Run("owner deletes, blob removed", func(t *testing.T) {
		stored, err := env.documents.Get(context.Background(), uploaded.DocumentID)
		require.NoError(t, err)

		rec := env.do(t, student, http.MethodDelete, "/api/documents/"+uploaded.DocumentID.String(), nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err = env.server.blobs.Open(context.Background(), stored.BlobKey)
		require.ErrorIs(t, err, blob.ErrBlobNotFound)
	})
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)
	clinic := env.newClinic(t, "Admin Clinic")

	admin := env.newAccount(t, "root", roleOf(models.RoleAdmin), nil)
	student := env.newAccount(t, "subject", roleOf(models.RoleStudent), nil)

	t.Run("list users", func(t *testing.T) {
		rec := env.do(t, admin, http.MethodGet, "/api/admin/users", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[[]accountResponse](t, rec)
		require.Len(t, resp, 2)
	})

	t.Run("non-admin denied", func(t *testing.T) {
		rec := env.do(t, student, http.MethodGet, "/api/admin/users", nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("override role", func(t *testing.T) {
		rec := env.do(t, admin, http.MethodPut, "/api/admin/users/"+student.AccountID.String()+"/role",
			setUserRoleRequest{Role: "clinic_member", ClinicID: &clinic.ClinicID})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[accountResponse](t, rec)
		require.NotNil(t, resp.Role)
		require.Equal(t, "clinic_member", *resp.Role)
	})

	t.Run("clinic role requires real clinic", func(t *testing.T) {
		missing := uuid.Must(uuid.NewV7())
		rec := env.do(t, admin, http.MethodPut, "/api/admin/users/"+student.AccountID.String()+"/role",
			setUserRoleRequest{Role: "clinic_admin", ClinicID: &missing})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("promote", func(t *testing.T) {
		rec := env.do(t, admin, http.MethodPost, "/api/admin/users/"+student.AccountID.String()+"/promote", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[accountResponse](t, rec)
		require.NotNil(t, resp.Role)
		require.Equal(t, "admin", *resp.Role)
	})

	t.Run("cannot delete own account", func(t *testing.T) {
		rec := env.do(t, admin, http.MethodDelete, "/api/admin/users/"+admin.AccountID.String(), nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete user", func(t *testing.T) {
		rec := env.do(t, admin, http.MethodDelete, "/api/admin/users/"+student.AccountID.String(), nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, admin, http.MethodDelete, "/api/admin/users/"+student.AccountID.String(), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
