package socket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pithecene-io/gamehub/channel"
	"github.com/pithecene-io/gamehub/iox"
	"github.com/pithecene-io/gamehub/ipc"
	"github.com/pithecene-io/gamehub/log"
	"github.com/pithecene-io/gamehub/types"
)

// Request argument and reply keys of the provider IPC contract.
const (
	argPackageName = "packageName"
	argMatchID     = "matchId"
	argMetadata    = "metaData"
	argSessionID   = "sessionId"
	argScore       = "score"

	replyIsLogin = "isLogin"
)

// errConnClosed is the disconnect cause when no better error is known.
var errConnClosed = errors.New("connection closed")

// client is a bound game hub service speaking ipc frames over conn.
// Calls are serialised: the provider contract allows one outstanding call
// per connection.
type client struct {
	conn        net.Conn
	enc         *ipc.FrameEncoder
	dec         *ipc.FrameDecoder
	callTimeout time.Duration
	logger      *log.Logger

	callMu sync.Mutex
	nextID uint64

	replies chan *types.ReplyFrame

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

func newClient(conn net.Conn, dec *ipc.FrameDecoder, callTimeout time.Duration, logger *log.Logger) *client {
	return &client{
		conn:        conn,
		enc:         ipc.NewFrameEncoder(conn),
		dec:         dec,
		callTimeout: callTimeout,
		logger:      logger,
		replies:     make(chan *types.ReplyFrame, 1),
		closed:      make(chan struct{}),
	}
}

// readLoop reads reply frames until the connection fails.
// Returns the cause of the disconnect.
func (c *client) readLoop() error {
	for {
		payload, err := c.dec.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errConnClosed
			}
			c.close(err)
			return c.closeErr
		}

		frame, err := ipc.DecodeFrame(payload)
		if err != nil {
			c.logger.Warn("dropping undecodable frame", map[string]any{"error": err.Error()})
			continue
		}

		reply, ok := frame.(*types.ReplyFrame)
		if !ok {
			continue
		}
		select {
		case c.replies <- reply:
		default:
			c.logger.Warn("dropping unexpected reply", map[string]any{"id": reply.ID})
		}
	}
}

func (c *client) close(err error) {
	c.closeOnce.Do(func() {
		c.closeErr = err
		iox.DiscardClose(c.conn)
		close(c.closed)
	})
}

// call performs one request/reply round trip.
func (c *client) call(ctx context.Context, method string, args map[string]any) (channel.Bag, error) {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	select {
	case <-c.closed:
		return nil, &channel.Fault{Kind: channel.FaultClosed, Method: method, Msg: "service not bound", Err: c.closeErr}
	default:
	}

	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	// Drain a late reply left behind by a previous timed-out call.
	select {
	case <-c.replies:
	default:
	}

	c.nextID++
	id := c.nextID
	req := &types.RequestFrame{
		Type:   types.RequestFrameType,
		ID:     id,
		Method: method,
		Args:   args,
	}
	if err := c.enc.WriteFrame(req); err != nil {
		return nil, &channel.Fault{Kind: channel.FaultTransport, Method: method, Msg: "send failed", Err: err}
	}

	for {
		select {
		case reply := <-c.replies:
			if reply.ID != id {
				continue
			}
			if reply.Error != nil {
				return nil, &channel.Fault{Kind: channel.FaultRemote, Method: method, Msg: *reply.Error}
			}
			if reply.Bag == nil {
				return nil, nil
			}
			return channel.Bag(reply.Bag), nil
		case <-c.closed:
			return nil, &channel.Fault{Kind: channel.FaultTransport, Method: method, Msg: "connection lost", Err: c.closeErr}
		case <-ctx.Done():
			return nil, &channel.Fault{Kind: channel.FaultTransport, Method: method, Msg: "no reply", Err: ctx.Err()}
		}
	}
}

// IsLogin asks the provider whether a user is signed in.
func (c *client) IsLogin(ctx context.Context) (bool, error) {
	bag, err := c.call(ctx, types.MethodIsLogin, nil)
	if err != nil {
		return false, err
	}
	v, ok := bag.Bool(replyIsLogin)
	if !ok {
		return false, &channel.Fault{
			Kind:   channel.FaultRemote,
			Method: types.MethodIsLogin,
			Msg:    fmt.Sprintf("reply has no boolean %q", replyIsLogin),
		}
	}
	return v, nil
}

// GetTournamentTimes fetches the current tournament window.
func (c *client) GetTournamentTimes(ctx context.Context, packageName string) (channel.Bag, error) {
	return c.call(ctx, types.MethodGetTournamentTimes, map[string]any{
		argPackageName: packageName,
	})
}

// StartTournamentMatch opens a match session.
func (c *client) StartTournamentMatch(ctx context.Context, packageName, matchID, metadata string) (channel.Bag, error) {
	return c.call(ctx, types.MethodStartTournamentMatch, map[string]any{
		argPackageName: packageName,
		argMatchID:     matchID,
		argMetadata:    metadata,
	})
}

// EndTournamentMatch submits the final score of a match session.
func (c *client) EndTournamentMatch(ctx context.Context, sessionID string, score float32) (channel.Bag, error) {
	return c.call(ctx, types.MethodEndTournamentMatch, map[string]any{
		argSessionID: sessionID,
		argScore:     score,
	})
}

// GetCurrentLeaderboard fetches the ranking of the current tournament.
func (c *client) GetCurrentLeaderboard(ctx context.Context, packageName string) (channel.Bag, error) {
	return c.call(ctx, types.MethodGetCurrentLeaderboard, map[string]any{
		argPackageName: packageName,
	})
}

// Verify client implements the channel service interface.
var _ channel.Service = (*client)(nil)
