package notebook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/remote"
)

func putRemoteSetting(t *testing.T, f *fixture, s model.CategorySetting) {
	t.Helper()
	require.NoError(t, f.store.PutCategorySetting(context.Background(), testUser, s))
}

func TestGetCategoryPalette_LocalFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mirror.WritePalette(model.Palette{"Work": {Color: "#111111", Visible: true}})
	putRemoteSetting(t, f, model.CategorySetting{Name: "Work", Color: "#999999"})
	putRemoteSetting(t, f, model.CategorySetting{Name: "Home", Color: "#222222"})

	p := f.repo.Palette().GetCategoryPalette(ctx, GetOptions{})
	assert.Equal(t, model.Palette{"Work": {Color: "#111111", Visible: true}}, p, "a non-empty local palette skips the remote read")

	p = f.repo.Palette().GetCategoryPalette(ctx, GetOptions{Force: true})
	assert.Equal(t, "#111111", p["Work"].Color, "local entries win the merge")
	assert.Equal(t, "#222222", p["Home"].Color)
	assert.Contains(t, f.mirror.ReadPalette(), "Home")
}

func TestGetCategoryPalette_EmptyLocalFetchesRemote(t *testing.T) {
	f := newFixture(t)
	putRemoteSetting(t, f, model.CategorySetting{Name: "Home", Color: "#ABCDEF", Visible: model.Bool(false)})

	p := f.repo.Palette().GetCategoryPalette(context.Background(), GetOptions{})
	assert.Equal(t, model.PaletteEntry{Color: "#abcdef", Visible: false}, p["Home"])
}

func TestGetCategoryPalette_RemoteFailureUsesLocal(t *testing.T) {
	f := newFixture(t)
	f.mirror.WritePalette(model.Palette{"Work": {Color: "#111111", Visible: true}})
	f.failOn(remote.OpListSettings)

	p := f.repo.Palette().GetCategoryPalette(context.Background(), GetOptions{Force: true})
	assert.Equal(t, "#111111", p["Work"].Color)
	assert.Equal(t, SyncEnabled, f.repo.Palette().Sync(), "only a permission denial opens the breaker")
}

func TestPalette_PermissionDeniedOpensBreaker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	palette := f.repo.Palette()
	f.failWith(model.ErrPermissionDenied, remote.OpListSettings)

	palette.GetCategoryPalette(ctx, GetOptions{Force: true})
	assert.Equal(t, SyncDisabled, palette.Sync())

	calls := f.countCalls()
	palette.GetCategoryPalette(ctx, GetOptions{Force: true})
	require.NoError(t, palette.SetCategoryColor(ctx, "Work", "#123456"))
	require.NoError(t, palette.SetCategoryVisibility(ctx, "Work", false))
	assert.Equal(t, int32(0), calls.Load(), "no remote category call after the breaker opens")

	assert.Equal(t, model.PaletteEntry{Color: "#123456", Visible: false}, palette.GetCategoryPalette(ctx, GetOptions{})["Work"])
}

func TestPalette_PermissionDeniedOnWriteOpensBreaker(t *testing.T) {
	f := newFixture(t)
	f.failWith(model.ErrPermissionDenied, remote.OpPutSetting)

	require.NoError(t, f.repo.Palette().SetCategoryColor(context.Background(), "Work", "#123456"))
	assert.Equal(t, SyncDisabled, f.repo.Palette().Sync())
}

func TestSetCategoryColor_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	palette := f.repo.Palette()

	for _, bad := range []string{"red", "#12345", "#1234567", "123456", "#gggggg"} {
		err := palette.SetCategoryColor(ctx, "Work", bad)
		assert.ErrorIs(t, err, model.ErrValidation, bad)
	}
	assert.Empty(t, palette.GetCategoryPalette(ctx, GetOptions{}))
	assert.Equal(t, 0, f.store.Commits())
}

func TestSetCategoryColor_RequiresIdentity(t *testing.T) {
	f := newFixture(t)
	f.who.SignOut()

	err := f.repo.Palette().SetCategoryColor(context.Background(), "Work", "#123456")
	assert.ErrorIs(t, err, model.ErrAuthRequired)
	assert.Empty(t, f.mirror.ReadPalette())
}

func TestSetCategoryColor_BlankNameIsNoop(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.repo.Palette().SetCategoryColor(context.Background(), "   ", "#123456"))
	assert.Empty(t, f.mirror.ReadPalette())
	assert.Equal(t, 0, f.store.Commits())
}

func TestSetCategoryColor_LowercasesAndSyncs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.repo.Palette().SetCategoryColor(ctx, " Work ", "#A1B2C3"))

	assert.Equal(t, model.PaletteEntry{Color: "#a1b2c3", Visible: true}, f.mirror.ReadPalette()["Work"])
	doc, ok, err := f.store.GetCategorySetting(ctx, testUser, "work")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "#a1b2c3", doc.Color)
	assert.Equal(t, "Work", doc.Name)
}

func TestSetCategoryColor_RemoteFailureIsNotSurfaced(t *testing.T) {
	f := newFixture(t)
	f.failOn(remote.OpPutSetting)

	require.NoError(t, f.repo.Palette().SetCategoryColor(context.Background(), "Work", "#123456"))
	assert.Equal(t, "#123456", f.mirror.ReadPalette()["Work"].Color)
}

func TestSetCategoryColor_ClearDeletesRemoteDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	palette := f.repo.Palette()
	require.NoError(t, palette.SetCategoryColor(ctx, "Work", "#123456"))

	require.NoError(t, palette.SetCategoryColor(ctx, "Work", ""))

	assert.NotContains(t, palette.GetCategoryPalette(ctx, GetOptions{}), "Work")
	_, ok, err := f.store.GetCategorySetting(ctx, testUser, "Work")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetCategoryColor_ClearKeepsHiddenEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	palette := f.repo.Palette()
	require.NoError(t, palette.SetCategoryColor(ctx, "Work", "#123456"))
	require.NoError(t, palette.SetCategoryVisibility(ctx, "Work", false))

	require.NoError(t, palette.SetCategoryColor(ctx, "Work", ""))

	assert.Equal(t, model.PaletteEntry{Visible: false}, palette.GetCategoryPalette(ctx, GetOptions{})["Work"])
	doc, ok, err := f.store.GetCategorySetting(ctx, testUser, "Work")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, doc.Color)
	require.NotNil(t, doc.Visible)
	assert.False(t, *doc.Visible)
}

func TestSetCategoryVisibility_HiddenWithoutColorRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	palette := f.repo.Palette()

	require.NoError(t, palette.SetCategoryVisibility(ctx, "Someday", false))

	assert.Equal(t, model.Palette{"Someday": {Visible: false}}, f.mirror.ReadPalette())
	doc, ok, err := f.store.GetCategorySetting(ctx, testUser, "Someday")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, doc.Color)

	require.NoError(t, palette.SetCategoryVisibility(ctx, "Someday", true))
	assert.Empty(t, f.mirror.ReadPalette(), "a visible entry without colour is pruned")
	_, ok, err = f.store.GetCategorySetting(ctx, testUser, "Someday")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetCategoryVisibility_KeepsColor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	palette := f.repo.Palette()
	require.NoError(t, palette.SetCategoryColor(ctx, "Work", "#123456"))

	require.NoError(t, palette.SetCategoryVisibility(ctx, "Work", false))
	require.NoError(t, palette.SetCategoryVisibility(ctx, "Work", true))

	assert.Equal(t, model.PaletteEntry{Color: "#123456", Visible: true}, palette.GetCategoryPalette(ctx, GetOptions{})["Work"])
	doc, ok, err := f.store.GetCategorySetting(ctx, testUser, "Work")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "#123456", doc.Color)
	assert.True(t, *doc.Visible)
}

func TestSyncState_String(t *testing.T) {
	assert.Equal(t, "enabled", SyncEnabled.String())
	assert.Equal(t, "disabled", SyncDisabled.String())
}
