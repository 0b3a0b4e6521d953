package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/logging"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client()), &calls
}

func TestAuthorizationHeader(t *testing.T) {
	cases := []struct {
		name      string
		tokenType string
		want      string
	}{
		{name: "bearer", tokenType: "BEARER", want: "Bearer abc"},
		{name: "bearer lowercase", tokenType: "bearer", want: "Bearer abc"},
		{name: "raw", tokenType: "", want: "abc"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				_, _ = io.WriteString(w, `{"id":1,"email":"a@b.c","role":"STUDENT"}`)
			})

			if _, err := client.Me(context.Background(), session.Session{AccessToken: "abc", TokenType: tc.tokenType}); err != nil {
				t.Fatalf("me: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

func TestRequestIDIsForwarded(t *testing.T) {
	var got string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		_, _ = io.WriteString(w, `[]`)
	})

	ctx := logging.WithRequestID(context.Background(), "req-42")
	if _, err := client.Ententes(ctx, session.Session{AccessToken: "t", Role: models.RoleProf}); err != nil {
		t.Fatalf("ententes: %v", err)
	}
	if got != "req-42" {
		t.Fatalf("expected request id to be forwarded, got %q", got)
	}
}

func TestBlankRejectionSendsNothing(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s := session.Session{AccessToken: "t", Role: models.RoleGestionnaire}

	err := client.RejectCV(context.Background(), s, 3, "   ")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var gwErr *Error
	if !errors.As(err, &gwErr) || gwErr.Fields["comment"] != "required" {
		t.Fatalf("expected comment field error, got %+v", err)
	}
	if err := client.RejectOffer(context.Background(), s, 3, ""); !IsValidation(err) {
		t.Fatalf("expected validation error for offer, got %v", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatalf("expected no backend call, got %d", *calls)
	}
}

func TestRejectSendsTrimmedComment(t *testing.T) {
	var path string
	var body Rejection
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
	})

	err := client.RejectCV(context.Background(), session.Session{AccessToken: "t", Role: models.RoleGestionnaire}, 3, "  incomplete  ")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if path != "/gestionnaire/cv/3/reject" || body.Comment != "incomplete" {
		t.Fatalf("unexpected request %s %+v", path, body)
	}
}

func TestErrorNormalization(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantData    bool
	}{
		{name: "message field", status: http.StatusBadRequest, body: `{"message":"bad dates"}`, wantMessage: "bad dates", wantData: true},
		{name: "error field", status: http.StatusConflict, body: `{"error":"already signed"}`, wantMessage: "already signed", wantData: true},
		{name: "plain text", status: http.StatusForbidden, body: "not allowed", wantMessage: "not allowed"},
		{name: "empty body", status: http.StatusNotFound, body: "", wantMessage: "Not Found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			err := client.SignEntente(context.Background(), session.Session{AccessToken: "t", Role: models.RoleStudent}, 1)
			var gwErr *Error
			if !errors.As(err, &gwErr) {
				t.Fatalf("expected gateway error, got %v", err)
			}
			if gwErr.Kind != KindHTTP || gwErr.Status != tc.status {
				t.Fatalf("expected http %d got %s %d", tc.status, gwErr.Kind, gwErr.Status)
			}
			if gwErr.Message != tc.wantMessage {
				t.Fatalf("expected message %q got %q", tc.wantMessage, gwErr.Message)
			}
			if (len(gwErr.Data) > 0) != tc.wantData {
				t.Fatalf("unexpected data %s", gwErr.Data)
			}
		})
	}
}

func TestNetworkErrorHasNoStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, nil)
	_, err := client.Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw"})
	if !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if StatusOf(err) != 0 {
		t.Fatalf("expected status 0 got %d", StatusOf(err))
	}
	if UserMessage(err) != "The server could not be reached." {
		t.Fatalf("unexpected user message %q", UserMessage(err))
	}
}

func TestLoginValidatesCredentials(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Login(context.Background(), Credentials{Email: "not-an-email", Password: ""})
	var gwErr *Error
	if !errors.As(err, &gwErr) || gwErr.Kind != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gwErr.Fields["email"] != "email" || gwErr.Fields["password"] != "required" {
		t.Fatalf("expected json field names, got %v", gwErr.Fields)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatalf("expected no backend call")
	}
}

func TestSignEndpointByRole(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
	})

	for _, role := range []models.Role{models.RoleStudent, models.RoleEmployeur, models.RoleGestionnaire} {
		if err := client.SignEntente(context.Background(), session.Session{AccessToken: "t", Role: role}, 9); err != nil {
			t.Fatalf("sign as %s: %v", role, err)
		}
	}
	want := []string{
		"POST /student/ententes/9/signer",
		"POST /employeur/ententes/9/signer",
		"POST /gestionnaire/ententes/9/signer",
	}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v got %v", want, paths)
	}

	if err := client.SignEntente(context.Background(), session.Session{AccessToken: "t", Role: models.RoleProf}, 9); !IsValidation(err) {
		t.Fatalf("expected prof to be refused, got %v", err)
	}
}

func TestGetBlob(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/employeur/offers/4/pdf" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Disposition", `attachment; filename="offre-4.pdf"`)
		_, _ = io.WriteString(w, "%PDF-1.4")
	})

	blob, err := client.OfferPDF(context.Background(), session.Session{AccessToken: "t", Role: models.RoleEmployeur}, 4)
	if err != nil {
		t.Fatalf("offer pdf: %v", err)
	}
	if blob.Filename != "offre-4.pdf" || string(blob.Data) != "%PDF-1.4" {
		t.Fatalf("unexpected blob %+v", blob)
	}
	if !strings.HasPrefix(blob.ContentType, "text/plain") && blob.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type %q", blob.ContentType)
	}
}

func TestUploadCVUsesPDFField(t *testing.T) {
	var field, filename, content string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("pdfFile")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		field, filename, content = "pdfFile", header.Filename, string(data)
		_, _ = io.WriteString(w, `{"id":12,"status":"PENDING"}`)
	})
	s := session.Session{AccessToken: "t", Role: models.RoleStudent}

	cv, err := client.UploadCV(context.Background(), s, Upload{Filename: "../cv.pdf", Data: []byte("%PDF")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if field != "pdfFile" || filename != "cv.pdf" || content != "%PDF" {
		t.Fatalf("unexpected upload %s %s %s", field, filename, content)
	}
	if cv.ID != 12 || cv.Status != models.CVStatusPending {
		t.Fatalf("unexpected cv %+v", cv)
	}

	if _, err := client.UploadCV(context.Background(), s, Upload{Filename: "cv.docx", Data: []byte("x")}); !IsValidation(err) {
		t.Fatalf("expected non-pdf to be refused, got %v", err)
	}
}

func TestApplyRequiresApprovedCV(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":3}`)
	})
	s := session.Session{AccessToken: "t", Role: models.RoleStudent}

	if _, err := client.Apply(context.Background(), s, 5, models.CVStatusPending); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatalf("expected no backend call")
	}
	c, err := client.Apply(context.Background(), s, 5, models.CVStatusApproved)
	if err != nil || c.ID != 3 {
		t.Fatalf("expected candidature 3, got %+v %v", c, err)
	}
}

func TestConvocationFor(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"candidatureId":10,"location":"Room 2"}]`)
	})
	s := session.Session{AccessToken: "t", Role: models.RoleStudent}

	conv, err := client.ConvocationFor(context.Background(), s, 10)
	if err != nil || conv.ID != 1 {
		t.Fatalf("expected convocation 1, got %+v %v", conv, err)
	}
	if _, err := client.ConvocationFor(context.Background(), s, 11); !errors.Is(err, ErrNoConvocation) {
		t.Fatalf("expected ErrNoConvocation, got %v", err)
	}
}

func TestOversizedResponseIsRefused(t *testing.T) {
	previous := maxResponseBytes
	maxResponseBytes = 1024
	t.Cleanup(func() { maxResponseBytes = previous })

	size := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(bytes.Repeat([]byte("x"), size))
	})
	s := session.Session{AccessToken: "t", Role: models.RoleGestionnaire}

	size = int(maxResponseBytes)
	blob, err := client.EntentePDF(context.Background(), s, 1)
	if err != nil {
		t.Fatalf("expected response at the limit to be accepted, got %v", err)
	}
	if len(blob.Data) != size {
		t.Fatalf("expected %d bytes got %d", size, len(blob.Data))
	}

	size = int(maxResponseBytes) + 1
	blob, err = client.EntentePDF(context.Background(), s, 1)
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected gateway error for oversized blob, got %v (%d bytes)", err, len(blob.Data))
	}
	if gwErr.Kind != KindHTTP || gwErr.Status != http.StatusBadGateway || gwErr.Message != "response too large" {
		t.Fatalf("unexpected error %+v", gwErr)
	}
	if len(blob.Data) != 0 {
		t.Fatalf("expected no partial blob, got %d bytes", len(blob.Data))
	}
}
