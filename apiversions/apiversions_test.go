package apiversions

import (
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/api-migrations/migrations"
)

func TestHistory(t *testing.T) {
	c := qt.New(t)

	r, err := New()
	c.Assert(err, qt.IsNil)

	versions := r.SortedVersions()
	c.Assert(versions, qt.HasLen, 3)
	c.Assert(versions[0].Number, qt.Equals, V20171224)
	c.Assert(versions[0].Migrations, qt.HasLen, 0, qt.Commentf("the first version must not carry migrations"))
	c.Assert(r.Latest().Number, qt.Equals, V20171226)

	_, err = r.AddVersion("2017-12-27")
	c.Assert(err, qt.ErrorIs, migrations.ErrRegistryFrozen)
}

func TestOldClientRoundTrip(t *testing.T) {
	c := qt.New(t)

	r, err := New()
	c.Assert(err, qt.IsNil)

	b, err := migrations.NewBond(r, &migrations.Request{
		Method: http.MethodPut,
		Path:   "/posts/1",
		Params: map[string]any{"author_id": "a1", "category_id": "c1"},
	}, V20171224)
	c.Assert(err, qt.IsNil)
	c.Assert(b.IsMigrationApplying(DropAuthorID), qt.IsTrue)
	c.Assert(b.IsMigrationApplying(RenameCategoryIDToCategory), qt.IsTrue)

	runner := migrations.NewRunner(b)
	req, err := runner.RunUpwards()
	c.Assert(err, qt.IsNil)
	c.Assert(req.Params, qt.DeepEquals, map[string]any{"author": "a1", "category": "c1"})

	resp, err := runner.RunDownwards(&migrations.Response{
		Status: http.StatusOK,
		Body:   []byte(`{"author":"a1","category":"c1"}`),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(string(resp.Body), qt.JSONEquals, map[string]any{"author_id": "a1", "category_id": "c1"})
}

func TestOnlyPostPathsAreMigrated(t *testing.T) {
	c := qt.New(t)

	r, err := New()
	c.Assert(err, qt.IsNil)
	b, err := migrations.NewBond(r, &migrations.Request{Path: "/versions"}, V20171225)
	c.Assert(err, qt.IsNil)
	c.Assert(b.IsMigrationRolled(DropAuthorID), qt.IsTrue)
	c.Assert(b.IsMigrationPending(RenameCategoryIDToCategory), qt.IsTrue)
	c.Assert(b.ApplyingMigrations(), qt.HasLen, 0)
}
