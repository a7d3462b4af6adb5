package main

import (
	"context"
	"fmt"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/conn"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
	"github.com/rcarmo/go-rdp-core/internal/corelog"
)

// runConnect drives a conn.Machine from the opening Connection Request
// through to KindReady, servicing TLS upgrade and CredSSP round trips on
// wc as they're asked for. It returns the negotiated ConnectionResult the
// session machine needs; wc is left positioned to read the first
// post-connect PDU.
func runConnect(ctx context.Context, wc *wireConn, cfg conn.Config, sink corelog.Sink) (conn.ConnectionResult, error) {
	m, err := conn.New(&cfg)
	if err != nil {
		return conn.ConnectionResult{}, fmt.Errorf("conn.New: %w", err)
	}

	out := buffer.NewWriter(4096)
	outcome, err := m.StepNoInput(out)
	if err != nil {
		return conn.ConnectionResult{}, err
	}

	for {
		corelog.Emit(sink, corelog.Diagnostic{
			Level: corelog.LevelDebug, Phase: "connect",
			Message: fmt.Sprintf("outcome kind=%d", outcome.Kind),
		})

		switch outcome.Kind {
		case conn.KindWritten, conn.KindNeedMore:
			if out.Len() > 0 {
				if err := wc.Write(ctx, out.Bytes()); err != nil {
					return conn.ConnectionResult{}, fmt.Errorf("write: %w", err)
				}
			}
			frame, err := wc.ReadHint(ctx, 0)
			if err != nil {
				return conn.ConnectionResult{}, fmt.Errorf("read frame: %w", err)
			}
			out = buffer.NewWriter(4096)
			outcome, err = m.Step(frame, out)
			if err != nil {
				return conn.ConnectionResult{}, err
			}

		case conn.KindSecurityUpgrade:
			if out.Len() > 0 {
				if err := wc.Write(ctx, out.Bytes()); err != nil {
					return conn.ConnectionResult{}, fmt.Errorf("write: %w", err)
				}
			}
			pubKey, err := wc.UpgradeTLS(ctx)
			if err != nil {
				return conn.ConnectionResult{}, err
			}
			out = buffer.NewWriter(4096)
			outcome, err = m.Step(pubKey, out)
			if err != nil {
				return conn.ConnectionResult{}, err
			}

		case conn.KindNetworkRequest:
			response, err := wc.RoundTrip(ctx, outcome.Request)
			if err != nil {
				return conn.ConnectionResult{}, fmt.Errorf("credssp round trip: %w", err)
			}
			out = buffer.NewWriter(4096)
			outcome, err = m.Step(response, out)
			if err != nil {
				return conn.ConnectionResult{}, err
			}

		case conn.KindReady:
			if out.Len() > 0 {
				if err := wc.Write(ctx, out.Bytes()); err != nil {
					return conn.ConnectionResult{}, fmt.Errorf("write: %w", err)
				}
			}
			corelog.Emit(sink, corelog.Diagnostic{
				Level: corelog.LevelInfo, Phase: "connect", Message: "connection established",
			})
			return outcome.Result, nil

		default:
			return conn.ConnectionResult{}, &rdperr.InvalidField{
				Name: "rdpcapture.connect", Reason: "unrecognized outcome kind",
			}
		}
	}
}
