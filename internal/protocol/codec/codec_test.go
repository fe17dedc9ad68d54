package codec

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/kaat-color/internal/apperrors"
	"github.com/palemoky/kaat-color/internal/protocol"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		msgType protocol.MessageType
		payload any
	}{
		{"nil payload", protocol.MsgPing, nil},
		{"play card", protocol.MsgPlayCard, protocol.PlayCardPayload{CardIndex: 3}},
		{"join room", protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: "123456", PlayerName: "Ana"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, err := NewMessage(tt.msgType, tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.msgType, msg.Type)
			if tt.payload == nil {
				assert.Nil(t, msg.Payload)
			} else {
				assert.NotEmpty(t, msg.Payload)
			}
		})
	}
}

func TestNewMessage_Unmarshalable(t *testing.T) {
	t.Parallel()

	_, err := NewMessage(protocol.MsgPing, make(chan int))
	assert.Error(t, err)
	assert.Panics(t, func() {
		MustNewMessage(protocol.MsgPing, func() {})
	})
}

func TestParsePayload(t *testing.T) {
	t.Parallel()

	msg := MustNewMessage(protocol.MsgUpdateTeamNames, protocol.UpdateTeamNamesPayload{
		TeamNames:   [2]string{"Red", "Blue"},
		PlayerNames: [4]string{"A", "", "C", ""},
	})
	p, err := ParsePayload[protocol.UpdateTeamNamesPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, [2]string{"Red", "Blue"}, p.TeamNames)
	assert.Equal(t, "C", p.PlayerNames[2])

	empty, err := ParsePayload[protocol.PlayCardPayload](&protocol.Message{Type: protocol.MsgPlayCard})
	require.NoError(t, err)
	assert.Zero(t, empty.CardIndex)

	_, err = ParsePayload[protocol.PlayCardPayload](&protocol.Message{
		Type:    protocol.MsgPlayCard,
		Payload: []byte(`{"card_index":"x"}`),
	})
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatJSON, FormatProtobuf} {
		t.Run(format.String(), func(t *testing.T) {
			t.Parallel()

			original := MustNewMessage(protocol.MsgGameState, protocol.GameStateDTO{
				Phase:      "playing",
				Seat:       2,
				TrumpSuit:  -1,
				Hand:       []protocol.CardInfo{{Suit: 0, Rank: 14}, {Suit: 1, Rank: 10, Color: 1}},
				LegalMoves: []int{0, 1},
				Teams:      [2]protocol.TeamScoreInfo{{Name: "Red", RoundWins: 2}, {Name: "Blue", Coats: 1}},
			})

			data, err := Encode(original, format)
			require.NoError(t, err)

			decoded, err := Decode(data, format)
			require.NoError(t, err)
			assert.Equal(t, protocol.MsgGameState, decoded.Type)

			state, err := ParsePayload[protocol.GameStateDTO](decoded)
			require.NoError(t, err)
			assert.Equal(t, "playing", state.Phase)
			assert.Equal(t, 2, state.Seat)
			assert.Equal(t, -1, state.TrumpSuit)
			assert.Equal(t, []int{0, 1}, state.LegalMoves)
			assert.Equal(t, 14, state.Hand[0].Rank)
			assert.Equal(t, "Blue", state.Teams[1].Name)
			assert.Equal(t, 1, state.Teams[1].Coats)
		})
	}
}

func TestEncode_JSONShape(t *testing.T) {
	t.Parallel()

	data, err := Encode(MustNewMessage(protocol.MsgPlayCard, protocol.PlayCardPayload{CardIndex: 4}), FormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"play_card","payload":{"card_index":4}}`, string(data))
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   []byte
		format Format
	}{
		{"broken json", []byte(`{"type":`), FormatJSON},
		{"json without type", []byte(`{"payload":{}}`), FormatJSON},
		{"broken protobuf", []byte{0xff, 0xff, 0xff}, FormatProtobuf},
		{"protobuf without type", mustEncodeProto(t), FormatProtobuf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tt.data, tt.format)
			assert.Error(t, err)
		})
	}
}

func mustEncodeProto(t *testing.T) []byte {
	t.Helper()
	data, err := encodeProto(&protocol.Message{})
	require.NoError(t, err)
	return data
}

func TestErrorMessageFrom(t *testing.T) {
	t.Parallel()

	msg := ErrorMessageFrom(fmt.Errorf("play: %w", apperrors.ErrIllegalMove))
	p, err := ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgError, msg.Type)
	assert.Equal(t, protocol.ErrCodeIllegalMove, p.Code)
	assert.Equal(t, apperrors.ErrIllegalMove.Message, p.Message)

	p, err = ParsePayload[protocol.ErrorPayload](ErrorMessageFrom(fmt.Errorf("boom")))
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeUnknown, p.Code)
}
