package profile_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchport/internal/account"
	accountstore "matchport/internal/account/store"
	"matchport/internal/profile"
	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
	"matchport/pkg/platform/tx"
)

type fixture struct {
	svc      *profile.Service
	accounts *accountstore.InMemory
}

func newFixture(t *testing.T, files profile.FileStore) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := accountstore.NewInMemory()
	store := profile.NewInMemoryStore()
	return &fixture{
		svc:      profile.NewService(store, accounts, files, tx.NewMemoryRunner(), logger),
		accounts: accounts,
	}
}

func (f *fixture) addAccount(t *testing.T, role account.Role) id.AccountID {
	t.Helper()
	a := &account.Account{
		ID:       id.NewAccountID(),
		Email:    id.NewAccountID().String() + "@example.org",
		Username: "u-" + id.NewAccountID().String()[:8],
		Role:     role,
		IsVetted: true,
	}
	require.NoError(t, f.accounts.Create(context.Background(), a))
	return a.ID
}

func orgInput() profile.OrgInput {
	return profile.OrgInput{
		Name:    "Midtown Shelter",
		Mission: "Emergency housing",
		Email:   "Contact@Midtown.org",
		Zipcode: "64111",
		EIN:     "12-3456789",
	}
}

func TestUpsertOrganization(t *testing.T) {
	ctx := context.Background()

	t.Run("creates then edits in place", func(t *testing.T) {
		f := newFixture(t, nil)
		cboID := f.addAccount(t, account.RoleCBO)

		created, err := f.svc.UpsertOrganization(ctx, cboID, orgInput())
		require.NoError(t, err)
		assert.Equal(t, "contact@midtown.org", created.Email)

		in := orgInput()
		in.Name = "Midtown Shelter & Services"
		updated, err := f.svc.UpsertOrganization(ctx, cboID, in)
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Midtown Shelter & Services", updated.Name)
	})

	t.Run("donor cannot create an organization profile", func(t *testing.T) {
		f := newFixture(t, nil)
		donorID := f.addAccount(t, account.RoleDonor)
		_, err := f.svc.UpsertOrganization(ctx, donorID, orgInput())
		assert.True(t, dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	t.Run("malformed EIN is rejected", func(t *testing.T) {
		f := newFixture(t, nil)
		cboID := f.addAccount(t, account.RoleCBO)
		in := orgInput()
		in.EIN = "123456789"
		_, err := f.svc.UpsertOrganization(ctx, cboID, in)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("malformed zipcode is rejected", func(t *testing.T) {
		f := newFixture(t, nil)
		cboID := f.addAccount(t, account.RoleCBO)
		in := orgInput()
		in.Zipcode = "6411"
		_, err := f.svc.UpsertOrganization(ctx, cboID, in)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestUploadLogo(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the file and records the URL", func(t *testing.T) {
		files, err := profile.NewLocalFileStore(t.TempDir(), "/uploads")
		require.NoError(t, err)
		f := newFixture(t, files)
		cboID := f.addAccount(t, account.RoleCBO)
		_, err = f.svc.UpsertOrganization(ctx, cboID, orgInput())
		require.NoError(t, err)

		body := strings.NewReader("png-bytes")
		org, err := f.svc.UploadLogo(ctx, cboID, "logo.png", "image/png", int64(body.Len()), body)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(org.LogoURL, "/uploads/"))
		assert.True(t, strings.HasSuffix(org.LogoURL, ".png"))

		// editing other fields keeps the uploaded logo
		updated, err := f.svc.UpsertOrganization(ctx, cboID, orgInput())
		require.NoError(t, err)
		assert.Equal(t, org.LogoURL, updated.LogoURL)
	})

	t.Run("accepts images up to 5 MB including GIFs", func(t *testing.T) {
		files, err := profile.NewLocalFileStore(t.TempDir(), "/uploads")
		require.NoError(t, err)
		f := newFixture(t, files)
		cboID := f.addAccount(t, account.RoleCBO)
		_, err = f.svc.UpsertOrganization(ctx, cboID, orgInput())
		require.NoError(t, err)

		big := strings.NewReader(strings.Repeat("p", 3<<20))
		_, err = f.svc.UploadLogo(ctx, cboID, "big.png", "image/png", int64(big.Len()), big)
		require.NoError(t, err)

		gif := strings.NewReader("gif-bytes")
		org, err := f.svc.UploadLogo(ctx, cboID, "logo.gif", "image/gif", int64(gif.Len()), gif)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(org.LogoURL, ".gif"))
	})

	t.Run("rejects oversized and non-image uploads", func(t *testing.T) {
		files, err := profile.NewLocalFileStore(t.TempDir(), "/uploads")
		require.NoError(t, err)
		f := newFixture(t, files)
		cboID := f.addAccount(t, account.RoleCBO)
		_, err = f.svc.UpsertOrganization(ctx, cboID, orgInput())
		require.NoError(t, err)

		_, err = f.svc.UploadLogo(ctx, cboID, "big.png", "image/png", 6<<20, strings.NewReader("x"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = f.svc.UploadLogo(ctx, cboID, "notes.txt", "text/plain", 4, strings.NewReader("text"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = f.svc.UploadLogo(ctx, cboID, "anim.webp", "image/webp", 4, strings.NewReader("webp"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestUploadPicture(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the file and records the URL", func(t *testing.T) {
		files, err := profile.NewLocalFileStore(t.TempDir(), "/uploads")
		require.NoError(t, err)
		f := newFixture(t, files)
		donorID := f.addAccount(t, account.RoleDonor)
		_, err = f.svc.UpsertDonorProfile(ctx, donorID, profile.DonorInput{
			Name:  "Sam",
			Email: "sam@example.org",
		})
		require.NoError(t, err)

		body := strings.NewReader("jpeg-bytes")
		dp, err := f.svc.UploadPicture(ctx, donorID, "me.jpg", "image/jpeg", int64(body.Len()), body)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(dp.PictureURL, "/uploads/"))

		// editing other fields keeps the uploaded picture
		updated, err := f.svc.UpsertDonorProfile(ctx, donorID, profile.DonorInput{
			Name:  "Sam",
			Email: "sam@example.org",
		})
		require.NoError(t, err)
		assert.Equal(t, dp.PictureURL, updated.PictureURL)
	})

	t.Run("CBO cannot upload a donor picture", func(t *testing.T) {
		files, err := profile.NewLocalFileStore(t.TempDir(), "/uploads")
		require.NoError(t, err)
		f := newFixture(t, files)
		cboID := f.addAccount(t, account.RoleCBO)
		_, err = f.svc.UploadPicture(ctx, cboID, "me.png", "image/png", 4, strings.NewReader("x"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})
}

func TestUpsertDonorProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("creates then edits in place", func(t *testing.T) {
		f := newFixture(t, nil)
		donorID := f.addAccount(t, account.RoleDonor)

		created, err := f.svc.UpsertDonorProfile(ctx, donorID, profile.DonorInput{
			Name:               "Sam",
			Email:              "sam@example.org",
			MaxPerRequestCents: 50000,
			ServiceAreaZipcode: "64111",
		})
		require.NoError(t, err)

		updated, err := f.svc.UpsertDonorProfile(ctx, donorID, profile.DonorInput{
			Name:               "Sam",
			Email:              "sam@example.org",
			MaxPerRequestCents: 75000,
		})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, int64(75000), updated.MaxPerRequestCents)
	})

	t.Run("negative maximum is rejected", func(t *testing.T) {
		f := newFixture(t, nil)
		donorID := f.addAccount(t, account.RoleDonor)
		_, err := f.svc.UpsertDonorProfile(ctx, donorID, profile.DonorInput{
			Name:               "Sam",
			Email:              "sam@example.org",
			MaxPerRequestCents: -1,
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("CBO cannot create a donor profile", func(t *testing.T) {
		f := newFixture(t, nil)
		cboID := f.addAccount(t, account.RoleCBO)
		_, err := f.svc.UpsertDonorProfile(ctx, cboID, profile.DonorInput{Name: "x", Email: "x@example.org"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})
}
