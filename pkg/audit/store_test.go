package audit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	event := ResolveEvent{
		ActorID:   12,
		RequestID: 7,
		Group:     "Reviewer",
		Operation: "approve",
		Success:   true,
	}

	mock.ExpectExec(`INSERT INTO audit_messages`).
		WithArgs(
			FacilityAuthPriv,  // facility
			int(SeverityInfo), // severity
			sqlmock.AnyArg(),  // timestamp
			sqlmock.AnyArg(),  // hostname
			"chatbot",         // appname
			sqlmock.AnyArg(),  // procid
			"resolve",         // msgid
			sqlmock.AnyArg(),  // sdata (JSON)
			"user 12 approved request 7 for group Reviewer",
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Save(event)
	if err != nil {
		t.Errorf("Save() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreSaveCommandDeniedEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	mock.ExpectExec(`INSERT INTO audit_messages`).
		WithArgs(
			FacilityAuth,
			int(SeverityNotice),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			"chatbot",
			sqlmock.AnyArg(),
			"command-denied",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Save(CommandDeniedEvent{ActorID: 5, Command: "View Requests", RequiredGroup: "Reviewer"})
	if err != nil {
		t.Errorf("Save() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreNilDB(t *testing.T) {
	store := &Store{db: nil}

	// Should not error when db is nil
	err := store.Save(ResolveEvent{ActorID: 1, RequestID: 1, Operation: "reject"})
	if err != nil {
		t.Errorf("Save() with nil db should not error, got: %v", err)
	}
}

func TestNewStoreDisabled(t *testing.T) {
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore(\"\") error = %v", err)
	}
	if store != nil {
		t.Error("expected nil store when no URL is configured")
	}
}

func TestStoreClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	store := NewStoreWithDB(db)

	mock.ExpectClose()

	err = store.Close()
	if err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPipelineSaveFailureIsSwallowed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_messages`).WillReturnError(errors.New("relation does not exist"))

	var buf bytes.Buffer
	p := New(newTestLogger(&buf), NewStoreWithDB(db), nil)
	p.Log(ResolveEvent{ActorID: 1, RequestID: 2, Operation: "reject", Success: true})

	if buf.Len() == 0 {
		t.Error("expected the syslog line to be written despite the store failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
