package nswire_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statecraft/nswire"
	"github.com/statecraft/nswire/assembly"
)

const testUA = "Example integration suite (dev@example.org)"

const nationBody = `<NATION id="testlandia">
<NAME>Testlandia</NAME>
<FULLNAME>The Hive Mind of Testlandia</FULLNAME>
<MOTTO>Grr. Arg.</MOTTO>
<REGION>Testregionia</REGION>
<POPULATION>40127</POPULATION>
<FREEDOM>
<CIVILRIGHTS>Excellent</CIVILRIGHTS>
<ECONOMY>Powerhouse</ECONOMY>
<POLITICALFREEDOM>Superb</POLITICALFREEDOM>
</FREEDOM>
<ENDORSEMENTS>maxtopia,brancaland</ENDORSEMENTS>
</NATION>`

func newTestClient(t *testing.T, h http.HandlerFunc) *nswire.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := nswire.New(testUA, nswire.WithBaseURL(srv.URL), nswire.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNew_RequiresUserAgent(t *testing.T) {
	_, err := nswire.New("   ")
	assert.Error(t, err)
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "the_north_pacific", nswire.Canonical("  The North Pacific "))
}

func TestClient_Nation(t *testing.T) {
	var gotQuery url.Values
	var gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(nationBody))
	})

	n, err := c.Nation(context.Background(), "Testlandia")
	require.NoError(t, err)

	assert.Equal(t, testUA, gotUA)
	assert.Equal(t, "testlandia", gotQuery.Get("nation"))
	assert.NotEmpty(t, gotQuery.Get("q"))
	assert.Equal(t, "Testlandia", n.Name)
	assert.Equal(t, 40127, n.Population)
	assert.Equal(t, "Powerhouse", n.Freedom.Economy)
	assert.Equal(t, []string{"maxtopia", "brancaland"}, n.Endorsements)
}

func TestClient_BaseURLWithQueryString(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(nationBody))
	}))
	t.Cleanup(srv.Close)
	c, err := nswire.New(testUA,
		nswire.WithBaseURL(srv.URL+"/api?v=12"),
		nswire.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.Nation(context.Background(), "Testlandia")
	require.NoError(t, err)
	assert.Equal(t, "12", gotQuery.Get("v"))
	assert.Equal(t, "testlandia", gotQuery.Get("nation"))
}

func TestClient_Nation_UnknownNation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`<ERROR>Unknown nation: "flooba".</ERROR>`))
	})

	_, err := c.Nation(context.Background(), "flooba")
	require.Error(t, err)
	ae, ok := nswire.AsAPIError(err)
	require.True(t, ok, "want the protocol error, got %v", err)
	assert.Contains(t, ae.Message, "Unknown nation")
}

func TestClient_Nation_BareStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Nation(context.Background(), "testlandia")
	require.Error(t, err)
	se, ok := nswire.AsStatusError(err)
	require.True(t, ok, "want status error, got %v", err)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestClient_RetriesOnceAfter429(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(nationBody))
	})

	n, err := c.Nation(context.Background(), "testlandia")
	require.NoError(t, err)
	assert.Equal(t, "Testlandia", n.Name)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_SecondThrottleIsTerminal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Nation(context.Background(), "testlandia")
	require.Error(t, err)
	se, ok := nswire.AsStatusError(err)
	require.True(t, ok, "want status error, got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
}

func TestClient_Happenings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<WORLD>
<HAPPENINGS>
<EVENT id="1"><TIMESTAMP>100</TIMESTAMP><TEXT>founded a nation</TEXT></EVENT>
<EVENT id="2"><TIMESTAMP>200</TIMESTAMP><TEXT>was endorsed by someone</TEXT></EVENT>
</HAPPENINGS>
</WORLD>`))
	})

	events, err := c.Happenings(context.Background(), func(ev map[string]any) bool {
		text, _ := ev["text"].(string)
		return text == "founded a nation"
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].ID)
}

func TestClient_NationsByNames(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("nation")
		w.Write([]byte(`<NATION><NAME>` + name + `</NAME></NATION>`))
	})

	nations, err := c.NationsByNames(context.Background(), "Alpha", "Beta", "Gamma")
	require.NoError(t, err)
	require.Len(t, nations, 3)
	assert.Equal(t, "alpha", nations[0].Name)
	assert.Equal(t, "beta", nations[1].Name)
	assert.Equal(t, "gamma", nations[2].Name)
}

func TestClient_NationsByNames_FailureWins(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("nation") == "flooba" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`<ERROR>Unknown nation: "flooba".</ERROR>`))
			return
		}
		w.Write([]byte(nationBody))
	})

	_, err := c.NationsByNames(context.Background(), "testlandia", "flooba")
	require.Error(t, err)
	_, ok := nswire.AsAPIError(err)
	assert.True(t, ok, "want the protocol error, got %v", err)
}

func TestClient_Do_CustomShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<WA council="1"><NUMNATIONS>12000</NUMNATIONS></WA>`))
	})

	root := assembly.New().Root("WA")
	root.OnTag("NUMNATIONS", func(a *assembly.Assembler, _ map[string]string) {
		a.Build("numnations", assembly.ToInt)
	})
	q := url.Values{"wa": {"1"}, "q": {"numnations"}}
	require.NoError(t, c.Do(context.Background(), q, root))

	v, err := root.Deliver()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"numnations": 12000}, v)
}
