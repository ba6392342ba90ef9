package server

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snapframe "github.com/hasimpk/snap-to-frame"
)

func TestFetcher(t *testing.T) {
	// Testing server that responds with request URI.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.RequestURI))
	}))
	defer srv.Close()

	hf := NewFetcher()

	// Fetch hundred different responses.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uri := fmt.Sprintf("/%d", i)

			resp, err := hf.client().Get(srv.URL + uri)
			if err != nil {
				t.Error(err)
				return
			}
			defer resp.Body.Close()

			got, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Error(err)
				return
			}

			if string(got) != uri {
				t.Errorf(`expected "%s", got "%s"`, uri, got)
			}
		}(i)
	}
	wg.Wait()
}

func TestCacheKey(t *testing.T) {
	data := []byte("image bytes")
	other := []byte("other image bytes")

	f1, err := snapframe.NewFrameFromQuery("size=800x600&bg=%23ff0000")
	require.NoError(t, err)
	f2, err := snapframe.NewFrameFromQuery("size=800x600&bg=%2300ff00")
	require.NoError(t, err)

	k1 := cacheKey(data, f1)

	// stable for the same inputs
	assert.Equal(t, k1, cacheKey(data, f1))

	// distinct per source and per frame
	assert.NotEqual(t, k1, cacheKey(other, f1))
	assert.NotEqual(t, k1, cacheKey(data, f2))

	// prefix bucket matches the content hash
	assert.Equal(t, k1[0:2], cacheKey(data, f2)[0:2])
}

func TestFrameFromRequest(t *testing.T) {
	app = &Server{FrameBase: snapframe.NewFrame()}

	r := httptest.NewRequest("POST", "/render?size=640x480&bg=%23336699&radius=12", nil)
	f, err := frameFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, 640, f.Width)
	assert.Equal(t, 480, f.Height)
	assert.Equal(t, "#336699", f.Background)
	assert.Equal(t, 12, f.BorderRadius)

	// base frame stays untouched
	assert.Equal(t, snapframe.DefaultFrameSize, app.FrameBase.Width)

	// bare request falls back to the configured defaults
	r = httptest.NewRequest("POST", "/render", nil)
	f, err = frameFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, snapframe.DefaultFrameSize, f.Width)

	// invalid colors are rejected before any work happens
	r = httptest.NewRequest("POST", "/render?bg=nope", nil)
	_, err = frameFromRequest(r)
	var cerr *snapframe.InvalidColorError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "background", cerr.Field)
}
