package server

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/pressly/lg"
	metrics "github.com/rcrowley/go-metrics"

	snapframe "github.com/hasimpk/snap-to-frame"
)

// cacheKey derives the storage key for one render: the source content hash
// bucketed by its two-character prefix, qualified by a digest of the
// canonical frame query. Identical source + identical frame = cache hit.
func cacheKey(data []byte, f *snapframe.Frame) string {
	src := sha1.Sum(data)
	srcKey := base64.RawURLEncoding.EncodeToString(src[:])

	qk := sha1.Sum([]byte(f.ToQuery().Encode()))
	frameKey := base64.RawURLEncoding.EncodeToString(qk[:])

	return fmt.Sprintf("%s/%s:q/%s", srcKey[0:2], srcKey, frameKey)
}

// RenderBlob frames a source blob, serving from the rendered-result cache
// when possible. A cache write failure is logged, not surfaced; the render
// itself already succeeded.
func (srv *Server) RenderBlob(ctx context.Context, data []byte, f *snapframe.Frame) ([]byte, error) {
	m := metrics.GetOrRegisterTimer("fn.RenderBlob", nil)
	defer m.UpdateSince(time.Now())

	key := cacheKey(data, f)

	if b, err := srv.Chainstore.Get(ctx, key); err == nil && len(b) > 0 {
		metrics.GetOrRegisterCounter("fn.RenderBlob.hit", nil).Inc(1)
		return b, nil
	}

	// bound the number of concurrent renders
	if srv.renderSem != nil {
		select {
		case srv.renderSem <- struct{}{}:
			defer func() { <-srv.renderSem }()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	im, err := srv.ImageEngine.LoadBlob(data)
	if err != nil {
		return nil, err
	}
	defer im.Release()

	if err := im.RenderFrame(f); err != nil {
		return nil, err
	}
	blob := im.Data()

	if err := srv.Chainstore.Put(ctx, key, blob); err != nil {
		lg.Warnf("cache put failed for %s: %s", key, err)
	}

	return blob, nil
}
