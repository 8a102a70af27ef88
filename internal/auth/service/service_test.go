package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dealership_crm_backend/internal/auth/token"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/platform/apperr"
)

type fakeCredentials struct {
	consultant domain.Consultant
	hash       string
}

func (f *fakeCredentials) GetCredentials(_ context.Context, email string) (domain.Consultant, string, error) {
	if email != f.consultant.Email {
		return domain.Consultant{}, "", apperr.Unauthorized("invalid credentials")
	}
	return f.consultant, f.hash, nil
}

func (f *fakeCredentials) Create(_ context.Context, name, email, role, passwordHash string) (domain.Consultant, error) {
	return domain.Consultant{ID: "new", Name: name, Email: email, Role: role, IsActive: true}, nil
}

func newTestService(active bool) (*Service, *fakeCredentials) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("senha-secreta"), bcrypt.MinCost)
	creds := &fakeCredentials{
		consultant: domain.Consultant{ID: "c1", Name: "Sergio", Email: "sergio@loja.com", Role: "consultant", IsActive: active},
		hash:       string(hash),
	}
	issuer := token.NewIssuer("test-secret", time.Hour)
	return New(creds, issuer), creds
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newTestService(true)
	session, err := svc.Login(context.Background(), "sergio@loja.com", "senha-secreta")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.AccessToken == "" {
		t.Fatal("expected a signed token")
	}
	if session.Consultant.ID != "c1" {
		t.Fatalf("consultant = %+v", session.Consultant)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(true)
	_, err := svc.Login(context.Background(), "sergio@loja.com", "errada-errada")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginInactiveConsultant(t *testing.T) {
	svc, _ := newTestService(false)
	_, err := svc.Login(context.Background(), "sergio@loja.com", "senha-secreta")
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRegisterValidatesRole(t *testing.T) {
	svc, _ := newTestService(true)
	if _, err := svc.Register(context.Background(), "Novo", "novo@loja.com", "senha-longa", "gerente"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "Novo", "novo@loja.com", "curta", "consultant"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected short-password rejection, got %v", err)
	}
}
