package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/puzzle-hub/puzzle-hub/internal/application/play"
)

// Intent names on the realtime wire, client to server.
const (
	intentGrab     = "piece:grab"
	intentMove     = "piece:move"
	intentRotate   = "piece:rotate"
	intentDrop     = "piece:drop"
	intentPanel    = "piece:panel"
	intentCursor   = "cursor:move"
	intentReaction = "reaction:send"
)

type intentEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type pieceIntent struct {
	PieceIndex int     `json:"pieceIndex"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Rotation   float64 `json:"rotation"`
	PanelOrder int     `json:"panelOrder"`
}

type cursorIntent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type reactionIntent struct {
	Emoji string  `json:"emoji"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// dispatch routes one inbound message to the play coordinator. Rejected
// intents are answered with an error event to the requester only; move and
// rotate relays carry no validation at all.
func (c *Client) dispatch(message []byte) {
	var envelope intentEnvelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		c.logger.Warn().Err(err).Msg("malformed intent")
		return
	}

	ctx := context.Background()
	switch envelope.Type {
	case intentGrab:
		var in pieceIntent
		if err := json.Unmarshal(envelope.Data, &in); err != nil {
			return
		}
		res, err := c.plays.Grab(ctx, c.GameID, c.SessionID, in.PieceIndex)
		if err != nil {
			c.replyError(envelope.Type, in.PieceIndex, err)
			return
		}
		if !res.Granted {
			c.sendEvent(play.Event{
				Type: play.EventPieceGrabDenied,
				Data: play.GrabDeniedEvent{PieceIndex: in.PieceIndex, HeldBy: res.HeldBy},
			})
		}

	case intentMove:
		var in pieceIntent
		if err := json.Unmarshal(envelope.Data, &in); err != nil {
			return
		}
		c.plays.Move(c.GameID, c.SessionID, in.PieceIndex, in.X, in.Y)

	case intentRotate:
		var in pieceIntent
		if err := json.Unmarshal(envelope.Data, &in); err != nil {
			return
		}
		c.plays.Rotate(c.GameID, c.SessionID, in.PieceIndex, in.Rotation)

	case intentDrop:
		var in pieceIntent
		if err := json.Unmarshal(envelope.Data, &in); err != nil {
			return
		}
		res, err := c.plays.Drop(ctx, c.GameID, c.SessionID, in.PieceIndex, in.X, in.Y, in.Rotation)
		if err != nil {
			c.replyError(envelope.Type, in.PieceIndex, err)
			return
		}
		// The dropper gets the authoritative pose too; its own optimistic
		// placement may have been corrected by a snap.
		c.sendEvent(play.Event{
			Type: play.EventPieceDropped,
			Data: play.PieceDroppedEvent{
				PieceIndex: in.PieceIndex,
				X:          res.X,
				Y:          res.Y,
				Rotation:   res.Rotation,
				Snapped:    res.Snapped,
				LockGroup:  res.LockGroup,
				SessionID:  c.SessionID,
			},
		})
		if res.Snapped && res.LockGroup != nil {
			c.sendEvent(play.Event{
				Type: play.EventPieceSnapped,
				Data: play.PieceSnappedEvent{PieceIndex: in.PieceIndex, SolvedEdges: res.SolvedEdges, LockGroup: *res.LockGroup, Members: res.Members},
			})
		}

	case intentPanel:
		var in pieceIntent
		if err := json.Unmarshal(envelope.Data, &in); err != nil {
			return
		}
		if err := c.plays.Panel(ctx, c.GameID, c.SessionID, in.PieceIndex, in.PanelOrder); err != nil {
			c.replyError(envelope.Type, in.PieceIndex, err)
		}

	case intentCursor:
		var in cursorIntent
		if err := json.Unmarshal(envelope.Data, &in); err != nil {
			return
		}
		c.plays.Cursor(c.GameID, c.SessionID, c.Name, in.X, in.Y)

	case intentReaction:
		var in reactionIntent
		if err := json.Unmarshal(envelope.Data, &in); err != nil {
			return
		}
		c.plays.Reaction(c.GameID, c.SessionID, c.Name, in.Emoji, in.X, in.Y)

	default:
		c.logger.Warn().Str("type", envelope.Type).Msg("unknown intent")
	}
}

// replyError answers a rejected intent so the client can retry; the rest of
// the room never hears about it.
func (c *Client) replyError(intent string, pieceIndex int, err error) {
	code := "internal_error"
	switch {
	case errors.Is(err, play.ErrNotOwner):
		code = "not_owner"
	case errors.Is(err, play.ErrUnknownPiece):
		code = "unknown_piece"
	case errors.Is(err, play.ErrPieceLocked):
		code = "piece_locked"
	case errors.Is(err, play.ErrGameNotFound):
		code = "game_not_found"
	}
	if code == "internal_error" {
		c.logger.Warn().Err(err).Str("intent", intent).Msg("intent failed")
	} else {
		c.logger.Debug().Str("intent", intent).Str("code", code).Msg("intent rejected")
	}
	c.sendEvent(play.Event{
		Type: play.EventError,
		Data: play.ErrorEvent{Intent: intent, PieceIndex: pieceIndex, Code: code},
	})
}
