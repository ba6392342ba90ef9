package server

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goware/urlx"
	"github.com/pressly/lg"
	metrics "github.com/rcrowley/go-metrics"
)

var (
	DefaultFetcherReqNumAttempts = 2
	DefaultFetcherConcurrency    = 100
	DefaultUserAgent             = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_10; rv:33.0) Gecko/20100101 Firefox/33.0"
)

type Fetcher struct {
	Client    *http.Client
	Transport *http.Transport

	ReqNumAttempts int
	HostKeepAlive  time.Duration
	MaxConcurrency int

	semOnce sync.Once
	sem     chan struct{}
}

type FetcherResponse struct {
	URL    *url.URL
	Status int
	Data   []byte
	Err    error
}

func NewFetcher() *Fetcher {
	hf := &Fetcher{}
	hf.ReqNumAttempts = DefaultFetcherReqNumAttempts
	hf.HostKeepAlive = 60 * time.Second
	hf.MaxConcurrency = DefaultFetcherConcurrency
	return hf
}

func (hf *Fetcher) acquire() func() {
	hf.semOnce.Do(func() {
		n := hf.MaxConcurrency
		if n <= 0 {
			n = DefaultFetcherConcurrency
		}
		hf.sem = make(chan struct{}, n)
	})
	hf.sem <- struct{}{}
	return func() { <-hf.sem }
}

func (hf *Fetcher) client() *http.Client {
	if hf.Client != nil {
		return hf.Client
	}

	hf.Transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: hf.HostKeepAlive,
		}).DialContext,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConnsPerHost: 2,
		DisableCompression:  true,
		DisableKeepAlives:   true,
	}

	hf.Client = &http.Client{
		Transport: hf.Transport,
	}

	return hf.Client
}

func (hf *Fetcher) Get(ctx context.Context, url string) (*FetcherResponse, error) {
	resps, err := hf.GetAll(ctx, []string{url})
	if err != nil {
		return nil, err
	}
	if len(resps) == 0 {
		return nil, errors.New("fetcher: no response")
	}
	resp := resps[0]
	if resp.Err != nil {
		return resp, resp.Err
	}
	return resp, nil
}

func (hf *Fetcher) GetAll(ctx context.Context, urls []string) ([]*FetcherResponse, error) {
	defer metrics.GetOrRegisterTimer("fn.FetchRemoteData", nil).UpdateSince(time.Now())

	fetches := make([]*FetcherResponse, len(urls))

	var wg sync.WaitGroup
	wg.Add(len(urls))

	for i, urlStr := range urls {
		fetches[i] = &FetcherResponse{}

		go func(fetch *FetcherResponse, reqURL string) {
			defer wg.Done()
			defer hf.acquire()()

			u, err := urlx.Parse(reqURL)
			if err != nil {
				fetch.Err = err
				return
			}
			fetch.URL = u

			lg.Infof("Fetching %s", u.String())

			req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
			if err != nil {
				fetch.Err = err
				return
			}
			req.Header.Set("User-Agent", DefaultUserAgent)
			req.Header.Set("Accept", "*/*")

			resp, err := hf.client().Do(req)
			if err != nil {
				lg.Warnf("Error fetching %s because %s", u.String(), err)
				fetch.Err = err
				return
			}
			defer resp.Body.Close()

			fetch.Status = resp.StatusCode

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				fetch.Err = err
				return
			}
			fetch.Data = body
			fetch.Err = nil

		}(fetches[i], urlStr)
	}

	wg.Wait()
	return fetches, nil
}
