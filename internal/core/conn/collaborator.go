package conn

import "context"

// Transport is the framed-transport collaborator: a byte-oriented reader
// that pulls exactly the hint'd number of bytes and a writer that sends a
// buffer then flushes. conn.Machine never holds one directly — it is the
// caller's job to read NextHint() bytes, call Step, and write the result —
// but callers that want a single driving loop implement this and the demo
// binary's pump wraps it.
type Transport interface {
	ReadHint(ctx context.Context, n int) ([]byte, error)
	Write(ctx context.Context, p []byte) error
}

// CredentialProvider supplies the username/domain/password the connection
// machine's CredSSP sub-machine and client-info PDU need. Implementations may prompt
// interactively or read from a config file; the core never does either.
type CredentialProvider interface {
	Domain() string
	Username() string
	Password() string
}

// SecurityUpgrader performs the TLS handshake KindSecurityUpgrade asks for,
// and the CredSSP NetworkRequest round trips KindNetworkRequest asks for.
// Both ride the same already-dialed transport; the core only ever sees the
// bytes that cross the wire, never the socket itself.
type SecurityUpgrader interface {
	UpgradeTLS(ctx context.Context) (serverPublicKey []byte, err error)
	RoundTrip(ctx context.Context, req NetworkRequest) (response []byte, err error)
}
