package form

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"job-board-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobWith(t *testing.T, overrides map[domain.Field]domain.RequirementLevel) *domain.Job {
	t.Helper()
	p := domain.DefaultPolicy()
	for f, l := range overrides {
		require.NoError(t, p.SetLevel(f, l))
	}
	return &domain.Job{ID: 10, Slug: "qa", Status: domain.JobStatusActive, Requirements: p}
}

func photo() *domain.Photo {
	return &domain.Photo{Filename: "me.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}}
}

type fakeTransport struct {
	calls   atomic.Int32
	err     error
	release chan struct{}
	got     domain.SubmissionPayload
}

func (f *fakeTransport) SubmitApplication(ctx context.Context, p domain.SubmissionPayload) (*domain.Applicant, error) {
	f.calls.Add(1)
	f.got = p
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Applicant{ID: 1, JobID: p.JobID}, nil
}

func TestStateFor(t *testing.T) {
	assert.Equal(t, RenderState{Visible: true, Enabled: true, Required: true}, StateFor(domain.LevelMandatory))
	assert.Equal(t, RenderState{Visible: true, Enabled: true, Required: false}, StateFor(domain.LevelOptional))
	assert.Equal(t, RenderState{Visible: true, Enabled: false, Required: false}, StateFor(domain.LevelOff))
}

func TestDescribeCoversEveryField(t *testing.T) {
	job := jobWith(t, map[domain.Field]domain.RequirementLevel{domain.FieldLinkedin: domain.LevelOff})
	descs := Describe(job.Requirements)
	require.Len(t, descs, len(domain.Fields))

	byField := map[domain.Field]FieldDescriptor{}
	for _, d := range descs {
		byField[d.Field] = d
		assert.Equal(t, StateFor(job.Requirements.LevelOf(d.Field)), d.State)
	}
	assert.Equal(t, domain.FieldPhotoProfile, descs[0].Field)
	assert.False(t, byField[domain.FieldLinkedin].State.Enabled)
	assert.True(t, byField[domain.FieldEmail].State.Required)
	assert.Contains(t, byField[domain.FieldPhotoProfile].Accept, "image/png")
	assert.Equal(t, int64(2<<20), byField[domain.FieldPhotoProfile].MaxBytes)
	assert.Equal(t, "+62", byField[domain.FieldPhoneNumber].DialCode)
	assert.Equal(t, []string{"FEMALE", "MALE"}, byField[domain.FieldGender].Options)
}

func TestBuildSubmissionExcludesOffFields(t *testing.T) {
	job := jobWith(t, map[domain.Field]domain.RequirementLevel{domain.FieldLinkedin: domain.LevelOff})

	payload, err := BuildSubmission(job, Inputs{
		Values: map[domain.Field]string{
			domain.FieldFullName: "Jane Doe",
			domain.FieldEmail:    "jane@x.com",
			domain.FieldLinkedin: "https://linkedin.com/in/jane",
			domain.FieldGender:   "  ",
		},
		Photo: photo(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), payload.JobID)
	assert.Equal(t, map[domain.Field]string{domain.FieldFullName: "Jane Doe", domain.FieldEmail: "jane@x.com"}, payload.Values)
	assert.False(t, payload.Has(domain.FieldLinkedin))
	assert.NotNil(t, payload.Photo)
	assert.Empty(t, domain.ValidateSubmission(job.Requirements, payload))
}

func TestBuildSubmissionReportsAllMissing(t *testing.T) {
	job := jobWith(t, map[domain.Field]domain.RequirementLevel{domain.FieldPhoneNumber: domain.LevelMandatory})

	_, err := BuildSubmission(job, Inputs{Values: map[domain.Field]string{domain.FieldEmail: "jane@x.com"}})
	require.ErrorIs(t, err, ErrRequiredFieldMissing)

	var missing *MissingFieldsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []domain.Field{domain.FieldFullName, domain.FieldPhotoProfile, domain.FieldPhoneNumber}, missing.Fields)
	assert.Equal(t, domain.CodeRequiredFieldMissing, missing.Violations()[0].Code)
	assert.Contains(t, err.Error(), "Full Name")
}

func TestSubmitMissingFullNameNeverHitsNetwork(t *testing.T) {
	f := New(jobWith(t, map[domain.Field]domain.RequirementLevel{domain.FieldLinkedin: domain.LevelOff}))
	defer f.Close()
	require.NoError(t, f.Apply(Change{Field: domain.FieldEmail, Value: "jane@x.com"}))
	require.NoError(t, f.SetPhoto(photo()))

	tr := &fakeTransport{}
	_, err := f.Submit(context.Background(), tr)

	var missing *MissingFieldsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []domain.Field{domain.FieldFullName}, missing.Fields)
	assert.Zero(t, tr.calls.Load())
	assert.False(t, f.Submitting())
}

func TestStaleInputForFieldTurnedOff(t *testing.T) {
	f := New(jobWith(t, nil))
	defer f.Close()
	require.NoError(t, f.Apply(Change{Field: domain.FieldFullName, Value: "Jane"}))
	require.NoError(t, f.Apply(Change{Field: domain.FieldEmail, Value: "jane@x.com"}))
	require.NoError(t, f.Apply(Change{Field: domain.FieldDomicile, Value: "Kota Bandung"}))
	require.NoError(t, f.SetPhoto(photo()))

	f.Reload(jobWith(t, map[domain.Field]domain.RequirementLevel{domain.FieldDomicile: domain.LevelOff}))
	assert.Equal(t, "Kota Bandung", f.Value(domain.FieldDomicile), "raw state keeps the text")
	assert.ErrorIs(t, f.Apply(Change{Field: domain.FieldDomicile, Value: "x"}), ErrFieldDisabled)

	tr := &fakeTransport{}
	_, err := f.Submit(context.Background(), tr)
	require.NoError(t, err)
	assert.False(t, tr.got.Has(domain.FieldDomicile))
}

func TestSubmitInFlightGate(t *testing.T) {
	f := New(jobWith(t, nil))
	defer f.Close()
	require.NoError(t, f.Apply(Change{Field: domain.FieldFullName, Value: "Jane"}))
	require.NoError(t, f.Apply(Change{Field: domain.FieldEmail, Value: "jane@x.com"}))
	require.NoError(t, f.SetPhoto(photo()))

	tr := &fakeTransport{release: make(chan struct{})}
	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background(), tr)
		done <- err
	}()

	require.Eventually(t, f.Submitting, time.Second, 5*time.Millisecond)
	_, err := f.Submit(context.Background(), tr)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(tr.release)
	require.NoError(t, <-done)
	assert.False(t, f.Submitting())
	assert.Equal(t, int32(1), tr.calls.Load())
}

func TestSubmitFailureKeepsInputs(t *testing.T) {
	f := New(jobWith(t, nil))
	defer f.Close()
	require.NoError(t, f.Apply(Change{Field: domain.FieldFullName, Value: "Jane"}))
	require.NoError(t, f.Apply(Change{Field: domain.FieldEmail, Value: "jane@x.com"}))
	require.NoError(t, f.SetPhoto(photo()))

	tr := &fakeTransport{err: errors.New("upload failed")}
	_, err := f.Submit(context.Background(), tr)
	require.Error(t, err)
	assert.False(t, f.Submitting())
	assert.Equal(t, "Jane", f.Value(domain.FieldFullName))

	tr.err = nil
	applicant, err := f.Submit(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, int64(10), applicant.JobID)
	assert.Equal(t, int32(2), tr.calls.Load())
}

func TestPhoneCountryReprefix(t *testing.T) {
	f := New(jobWith(t, nil))
	defer f.Close()
	assert.Equal(t, "ID", f.Country().Code)

	require.NoError(t, f.Apply(Change{Field: domain.FieldPhoneNumber, Value: "812-3456-789"}))
	assert.Equal(t, "+628123456789", f.Value(domain.FieldPhoneNumber))

	require.NoError(t, f.SelectCountry("sg"))
	assert.Equal(t, "+658123456789", f.Value(domain.FieldPhoneNumber))

	assert.ErrorIs(t, f.SelectCountry("XX"), ErrUnknownCountry)
	assert.Equal(t, "SG", f.Country().Code)

	require.NoError(t, f.Apply(Change{Field: domain.FieldPhoneNumber, Value: ""}))
	assert.Empty(t, f.Value(domain.FieldPhoneNumber))
}

func TestSelectDateUsesLocalCalendarDay(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	honolulu := time.FixedZone("HST", -10*3600)

	f := New(jobWith(t, nil))
	defer f.Close()

	// Midnight in Jakarta is still the 13th in UTC.
	require.NoError(t, f.SelectDate(time.Date(2024, time.March, 14, 0, 0, 0, 0, jakarta)))
	assert.Equal(t, "2024-03-14", f.Value(domain.FieldDateOfBirth))

	require.NoError(t, f.SelectDate(time.Date(2024, time.March, 14, 23, 30, 0, 0, honolulu)))
	assert.Equal(t, "2024-03-14", f.Value(domain.FieldDateOfBirth))

	d, err := domain.ParseDate(f.Value(domain.FieldDateOfBirth))
	require.NoError(t, err)
	assert.Equal(t, "14 March 2024", d.Display())
}

func TestDomicileSuggestions(t *testing.T) {
	got := Suggest("BANDUNG")
	require.NotEmpty(t, got)
	for _, s := range got {
		assert.Contains(t, s.City+s.Province, "Bandung")
	}

	byProvince := Suggest("jawa barat")
	assert.Contains(t, byProvince, Suggestion{City: "Kota Bekasi", Province: "Jawa Barat"})
	assert.Empty(t, Suggest("atlantis"))
	assert.Len(t, Suggest(""), len(suggestions))

	f := New(jobWith(t, nil))
	defer f.Close()
	require.NoError(t, f.Apply(Change{Field: domain.FieldDomicile, Value: "band"}))
	require.NoError(t, f.SelectDomicile(got[0]))
	assert.Equal(t, got[0].City, f.Value(domain.FieldDomicile))

	require.NoError(t, f.Apply(Change{Field: domain.FieldDomicile, Value: "Somewhere Else"}))
	assert.Equal(t, "Somewhere Else", f.Value(domain.FieldDomicile), "free text is accepted")
}

func TestSearchCountries(t *testing.T) {
	got := SearchCountries("indo")
	require.Len(t, got, 1)
	assert.Equal(t, "+62", got[0].DialCode)
	assert.Len(t, SearchCountries(""), len(Countries()))
}

func TestSetPhoto(t *testing.T) {
	f := New(jobWith(t, nil))
	defer f.Close()

	assert.ErrorIs(t, f.SetPhoto(&domain.Photo{Filename: "cv.pdf", ContentType: "application/pdf", Data: []byte("x")}), ErrPhotoType)
	assert.ErrorIs(t, f.SetPhoto(&domain.Photo{Filename: "big.jpg", Data: make([]byte, 3<<20)}), ErrPhotoTooLarge)
	require.NoError(t, f.SetPhoto(photo()))
	assert.NotNil(t, f.Inputs().Photo)
	require.NoError(t, f.SetPhoto(nil))
	assert.Nil(t, f.Inputs().Photo)
}

func TestApplyRejectsUnknownAndPhoto(t *testing.T) {
	f := New(jobWith(t, nil))
	defer f.Close()
	assert.ErrorIs(t, f.Apply(Change{Field: "shoeSize", Value: "42"}), domain.ErrUnknownField)
	assert.Error(t, f.Apply(Change{Field: domain.FieldPhotoProfile, Value: "x"}))
}

func TestApplyChecksGenderAndDate(t *testing.T) {
	f := New(jobWith(t, nil))
	defer f.Close()

	assert.ErrorIs(t, f.Apply(Change{Field: domain.FieldGender, Value: "OTHER"}), ErrInvalidValue)
	assert.ErrorIs(t, f.Apply(Change{Field: domain.FieldDateOfBirth, Value: "14/03/1995"}), ErrInvalidValue)
	assert.Empty(t, f.Value(domain.FieldGender))

	require.NoError(t, f.Apply(Change{Field: domain.FieldGender, Value: "FEMALE"}))
	require.NoError(t, f.Apply(Change{Field: domain.FieldGender, Value: ""}))
	require.NoError(t, f.Apply(Change{Field: domain.FieldDateOfBirth, Value: "2099-01-01"}))
}

func TestShortPhoneAndFreeFormNameAreSent(t *testing.T) {
	f := New(jobWith(t, nil))
	defer f.Close()

	require.NoError(t, f.Apply(Change{Field: domain.FieldFullName, Value: "Jane_Doe!"}))
	require.NoError(t, f.Apply(Change{Field: domain.FieldEmail, Value: "jane@x.com"}))
	require.NoError(t, f.Apply(Change{Field: domain.FieldPhoneNumber, Value: "812"}))
	require.NoError(t, f.SetPhoto(photo()))

	payload, err := BuildSubmission(f.Job(), f.Inputs())
	require.NoError(t, err)
	assert.Equal(t, "+62812", payload.Values[domain.FieldPhoneNumber])
	assert.Equal(t, "Jane_Doe!", payload.Values[domain.FieldFullName])
}
