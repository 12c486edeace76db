package uploader

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
)

// RootCertFile is the store name of the PEM trust anchors.
const RootCertFile = "rootcert.crt"

// LoadRootCert (re)reads the trust anchors from the store. A missing, empty
// or unparsable file clears them, which selects the insecure fallback.
func (u *Uploader) LoadRootCert() bool {
	u.roots = nil
	u.dropClient()
	if !u.store.Exists(RootCertFile) {
		return false
	}
	pem, err := u.store.ReadFile(RootCertFile)
	if err != nil {
		u.log.Warnw("root_cert_read_failed", "err", err)
		return false
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		u.log.Warnw("root_cert_invalid", "file", RootCertFile, "bytes", len(pem))
		return false
	}
	u.roots = pool
	u.log.Infow("root_cert_loaded", "file", RootCertFile)
	return true
}

// HasTrustAnchors reports whether server certificates will be verified.
func (u *Uploader) HasTrustAnchors() bool {
	return u.roots != nil
}

// httpClient returns the client for the current trust anchors, building it
// on first use after New or LoadRootCert so keep-alive connections are shared
// across Publish calls.
func (u *Uploader) httpClient() (*http.Client, bool) {
	insecure := u.roots == nil
	if u.client != nil {
		return u.client, insecure
	}
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if insecure {
		tlsCfg.InsecureSkipVerify = true //nolint:gosec // no trust anchors configured
	} else {
		tlsCfg.RootCAs = u.roots
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg
	u.client = &http.Client{Timeout: u.opts.Timeout, Transport: transport}
	return u.client, insecure
}

// dropClient closes the idle connections of the cached client and forgets it.
func (u *Uploader) dropClient() {
	if u.client == nil {
		return
	}
	u.client.CloseIdleConnections()
	u.client = nil
}
