package archive

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/runlog"
	"github.com/matzehuels/beamforge/pkg/survey"
)

func TestConnectDefaults(t *testing.T) {
	// The driver connects lazily, so no server is needed here.
	ctx := context.Background()
	a, err := Connect(ctx, Options{})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer a.Close(ctx)

	if a.surveys.Name() != "surveys" {
		t.Errorf("surveys collection named %q", a.surveys.Name())
	}
	if a.runs.Name() != "runs" {
		t.Errorf("runs collection named %q", a.runs.Name())
	}
	if a.surveys.Database().Name() != "beamforge" {
		t.Errorf("database named %q", a.surveys.Database().Name())
	}
}

func TestConnectBadURI(t *testing.T) {
	_, err := Connect(context.Background(), Options{URI: "://not-a-uri"})
	if !errors.Is(err, errors.ErrCodeArchive) {
		t.Errorf("bad URI should be ARCHIVE_ERROR, got %v", err)
	}
}

func TestStoredSurveyBSON(t *testing.T) {
	stored := StoredSurvey{
		Line:     "fodo",
		StoredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Survey: &survey.Document{
			Name:        "fodo",
			TotalLength: 4.5,
			Rows: []survey.Row{{
				Label:   "QF",
				Keyword: "QUADRUPOLE",
				Family:  "cartesian",
				SIn:     1.0,
				SOut:    1.5,
				Length:  0.5,
				Entry:   survey.Position{X: 1.0},
				Exit:    survey.Position{X: 1.5},
			}},
		},
	}

	data, err := bson.Marshal(stored)
	if err != nil {
		t.Fatalf("bson.Marshal: %v", err)
	}

	var back StoredSurvey
	if err := bson.Unmarshal(data, &back); err != nil {
		t.Fatalf("bson.Unmarshal: %v", err)
	}
	if back.Line != "fodo" || back.Survey == nil {
		t.Fatalf("round trip lost envelope: %+v", back)
	}
	if back.Survey.TotalLength != 4.5 {
		t.Errorf("TotalLength = %v", back.Survey.TotalLength)
	}
	if len(back.Survey.Rows) != 1 || back.Survey.Rows[0].Label != "QF" {
		t.Fatalf("rows did not round trip: %+v", back.Survey.Rows)
	}
	if back.Survey.Rows[0].Exit.X != 1.5 {
		t.Errorf("row geometry did not round trip: %+v", back.Survey.Rows[0])
	}
	if !back.StoredAt.Equal(stored.StoredAt) {
		t.Errorf("StoredAt = %v", back.StoredAt)
	}
}

func TestStoredRunBSON(t *testing.T) {
	stored := StoredRun{
		Line:     "ring",
		StoredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Run: &runlog.Record{
			ID:       "abc-123",
			Line:     "ring",
			Status:   runlog.StatusFailed,
			Started:  time.Date(2025, 6, 1, 11, 59, 0, 0, time.UTC),
			Duration: 2 * time.Second,
			Error:    "exit status 2",
		},
	}

	data, err := bson.Marshal(stored)
	if err != nil {
		t.Fatalf("bson.Marshal: %v", err)
	}

	var back StoredRun
	if err := bson.Unmarshal(data, &back); err != nil {
		t.Fatalf("bson.Unmarshal: %v", err)
	}
	if back.Run == nil || back.Run.ID != "abc-123" {
		t.Fatalf("run did not round trip: %+v", back)
	}
	if back.Run.Status != runlog.StatusFailed || back.Run.Error != "exit status 2" {
		t.Errorf("run fields did not round trip: %+v", back.Run)
	}
	if back.Run.Duration != 2*time.Second {
		t.Errorf("Duration = %v", back.Run.Duration)
	}
}

func TestPutSurveyNil(t *testing.T) {
	ctx := context.Background()
	a, err := Connect(ctx, Options{})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer a.Close(ctx)

	if err := a.PutSurvey(ctx, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil survey should be INVALID_INPUT, got %v", err)
	}
	if err := a.PutRun(ctx, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil run should be INVALID_INPUT, got %v", err)
	}
}
