package mail

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"io"
	"math/big"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	from string
	to   []string
	data []byte
	tls  bool
}

type testBackend struct {
	user, pass string

	mu   sync.Mutex
	msgs []received
}

func (b *testBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	_, isTLS := c.TLSConnectionState()
	return &testSession{b: b, tls: isTLS}, nil
}

func (b *testBackend) messages() []received {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]received(nil), b.msgs...)
}

type testSession struct {
	b      *testBackend
	tls    bool
	authed bool
	from   string
	to     []string
}

func (s *testSession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *testSession) Auth(_ string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(_, username, password string) error {
		if username != s.b.user || password != s.b.pass {
			return errors.New("invalid credentials")
		}
		s.authed = true
		return nil
	}), nil
}

func (s *testSession) Mail(from string, _ *smtp.MailOptions) error {
	if !s.authed {
		return smtp.ErrAuthRequired
	}
	s.from = from
	return nil
}

func (s *testSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.to = append(s.to, to)
	return nil
}

func (s *testSession) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.b.mu.Lock()
	s.b.msgs = append(s.b.msgs, received{from: s.from, to: s.to, data: b, tls: s.tls})
	s.b.mu.Unlock()
	return nil
}

func (s *testSession) Reset() {
	s.from = ""
	s.to = nil
}

func (s *testSession) Logout() error { return nil }

func startSMTPServer(t *testing.T, be *testBackend) (string, int) {
	t.Helper()
	return startSMTPServerWithTLS(t, be, nil)
}

// startSMTPServerWithTLS advertises STARTTLS when tlsConfig is set and then
// only accepts AUTH over TLS.
func startSMTPServerWithTLS(t *testing.T, be *testBackend, tlsConfig *tls.Config) (string, int) {
	t.Helper()

	srv := smtp.NewServer(be)
	srv.Domain = "localhost"
	srv.TLSConfig = tlsConfig
	srv.AllowInsecureAuth = tlsConfig == nil

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go srv.Serve(l)
	t.Cleanup(func() { srv.Close() })

	host, portStr, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestSMTPSender_Send(t *testing.T) {
	be := &testBackend{user: "web@geonix.co.kr", pass: "secret"}
	host, port := startSMTPServer(t, be)

	sender := NewSMTPSender(SMTPConfig{
		Host:     host,
		Port:     port,
		Secure:   false,
		Username: "web@geonix.co.kr",
		Password: "secret",
	})

	require.NoError(t, sender.Send(context.Background(), testEnvelope()))

	msgs := be.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "web@geonix.co.kr", msgs[0].from)
	assert.Equal(t, []string{"sales@geonix.co.kr"}, msgs[0].to)
	assert.False(t, msgs[0].tls)

	mr, err := gomail.CreateReader(bytes.NewReader(msgs[0].data))
	require.NoError(t, err)
	replyTo, err := mr.Header.AddressList("Reply-To")
	require.NoError(t, err)
	require.Len(t, replyTo, 1)
	assert.Equal(t, "kim@x.com", replyTo[0].Address)
}

func TestSMTPSender_BadCredentials(t *testing.T) {
	be := &testBackend{user: "web@geonix.co.kr", pass: "secret"}
	host, port := startSMTPServer(t, be)

	sender := NewSMTPSender(SMTPConfig{Host: host, Port: port, Username: "web@geonix.co.kr", Password: "wrong"})

	err := sender.Send(context.Background(), testEnvelope())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp auth")
	assert.Empty(t, be.messages())
}

func TestSMTPSender_CanceledContext(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.Send(ctx, testEnvelope())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSMTPSender_DialFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().(*net.TCPAddr)
	require.NoError(t, l.Close())

	sender := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: addr.Port})
	err = sender.Send(context.Background(), testEnvelope())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp dial")
}

// selfSignedTLS returns a server config for 127.0.0.1 and a client config
// trusting it.
func selfSignedTLS(t *testing.T) (server, client *tls.Config) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "smtp.test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	pool := x509.NewCertPool()
	pool.AddCert(leaf)

	server = &tls.Config{Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}}}
	client = &tls.Config{RootCAs: pool, ServerName: "127.0.0.1"}
	return server, client
}

func TestSMTPSender_UpgradesWithSTARTTLS(t *testing.T) {
	be := &testBackend{user: "web@geonix.co.kr", pass: "secret"}
	serverTLS, clientTLS := selfSignedTLS(t)
	host, port := startSMTPServerWithTLS(t, be, serverTLS)

	sender := NewSMTPSender(SMTPConfig{
		Host:      host,
		Port:      port,
		Secure:    false,
		Username:  "web@geonix.co.kr",
		Password:  "secret",
		TLSConfig: clientTLS,
	})

	require.NoError(t, sender.Send(context.Background(), testEnvelope()))

	msgs := be.messages()
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].tls, "message was submitted over the upgraded connection")
	assert.Equal(t, []string{"sales@geonix.co.kr"}, msgs[0].to)
}

func TestSMTPSender_STARTTLSUntrustedCertificate(t *testing.T) {
	be := &testBackend{user: "web@geonix.co.kr", pass: "secret"}
	serverTLS, _ := selfSignedTLS(t)
	host, port := startSMTPServerWithTLS(t, be, serverTLS)

	sender := NewSMTPSender(SMTPConfig{
		Host:      host,
		Port:      port,
		Username:  "web@geonix.co.kr",
		Password:  "secret",
		TLSConfig: &tls.Config{RootCAs: x509.NewCertPool(), ServerName: "127.0.0.1"},
	})

	require.Error(t, sender.Send(context.Background(), testEnvelope()))
	assert.Empty(t, be.messages())
}

func TestSMTPSender_EveryRecipientGetsRCPT(t *testing.T) {
	be := &testBackend{user: "web@geonix.co.kr", pass: "secret"}
	host, port := startSMTPServer(t, be)

	sender := NewSMTPSender(SMTPConfig{Host: host, Port: port, Username: "web@geonix.co.kr", Password: "secret"})

	env := testEnvelope()
	env.To = []Address{{Email: "roman@geonix.co.kr"}, {Email: "geonix_official@geonix.co.kr"}}
	require.NoError(t, sender.Send(context.Background(), env))

	msgs := be.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"roman@geonix.co.kr", "geonix_official@geonix.co.kr"}, msgs[0].to)

	mr, err := gomail.CreateReader(bytes.NewReader(msgs[0].data))
	require.NoError(t, err)
	to, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 2)
}
