package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWarmer struct {
	mu     sync.Mutex
	warmed []int64
	at     []time.Time
	fail   map[int64]error
}

func (w *fakeWarmer) Warm(_ context.Context, companyID int64, at time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.fail[companyID]; err != nil {
		return err
	}
	w.warmed = append(w.warmed, companyID)
	w.at = append(w.at, at)
	return nil
}

type staticCompanies []int64

func (s staticCompanies) ActiveCompanyIDs(context.Context) ([]int64, error) {
	return s, nil
}

func TestReportsWarmupSingleCompany(t *testing.T) {
	warmer := &fakeWarmer{}
	job := NewReportsWarmupJob(warmer, nil, discardLogger(), nil)
	fixed := time.Date(2025, time.December, 3, 10, 0, 0, 0, time.UTC)
	job.clock = func() time.Time { return fixed }

	task, err := NewReportsWarmupTask(ReportsWarmupPayload{CompanyID: 7})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, []int64{7}, warmer.warmed)
	assert.Equal(t, fixed, warmer.at[0])
}

func TestReportsWarmupAllCompaniesContinuesOnError(t *testing.T) {
	warmer := &fakeWarmer{fail: map[int64]error{2: errors.New("renderer down")}}
	job := NewReportsWarmupJob(warmer, staticCompanies{1, 2, 3}, discardLogger(), nil)

	task, err := NewReportsWarmupTask(ReportsWarmupPayload{})
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)

	assert.ErrorContains(t, err, "renderer down")
	assert.Equal(t, []int64{1, 3}, warmer.warmed)
}

func TestReportsWarmupNeedsLister(t *testing.T) {
	job := NewReportsWarmupJob(&fakeWarmer{}, nil, discardLogger(), nil)
	task, err := NewReportsWarmupTask(ReportsWarmupPayload{})
	require.NoError(t, err)
	assert.Error(t, job.Handle(context.Background(), task))
}
