package billing

import (
	"errors"
	"testing"
	"time"
)

func TestVerifySignatureValid(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"customer.subscription.updated"}`)
	now := time.Unix(1700000000, 0)

	header := SignatureHeader(secret, now.Unix(), payload)
	if err := VerifySignature(secret, header, payload, now, DefaultSignatureTolerance); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifySignatureTampered(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Unix(1700000000, 0)

	header := SignatureHeader(secret, now.Unix(), payload)
	if err := VerifySignature(secret, header, []byte(`{"id":"evt_2"}`), now, DefaultSignatureTolerance); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Unix(1700000000, 0)

	header := SignatureHeader("whsec_a", now.Unix(), payload)
	if err := VerifySignature("whsec_b", header, payload, now, DefaultSignatureTolerance); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifySignatureStale(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{}`)
	signedAt := time.Unix(1700000000, 0)

	header := SignatureHeader(secret, signedAt.Unix(), payload)
	later := signedAt.Add(time.Hour)
	if err := VerifySignature(secret, header, payload, later, DefaultSignatureTolerance); !errors.Is(err, ErrSignatureExpired) {
		t.Fatalf("expected ErrSignatureExpired, got %v", err)
	}
}

func TestVerifySignatureMalformedHeader(t *testing.T) {
	if err := VerifySignature("whsec_test", "nonsense", []byte(`{}`), time.Now(), 0); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if err := VerifySignature("whsec_test", "t=abc,v1=00", []byte(`{}`), time.Now(), 0); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for bad timestamp, got %v", err)
	}
}

func TestVerifySignatureRotationCandidates(t *testing.T) {
	secret := "whsec_new"
	payload := []byte(`{}`)
	now := time.Unix(1700000000, 0)

	stale := ComputeSignature("whsec_old", now.Unix(), payload)
	good := ComputeSignature(secret, now.Unix(), payload)
	header := "t=1700000000,v1=" + stale + ",v1=" + good

	if err := VerifySignature(secret, header, payload, now, DefaultSignatureTolerance); err != nil {
		t.Fatalf("expected rotation candidate to verify, got %v", err)
	}
}
