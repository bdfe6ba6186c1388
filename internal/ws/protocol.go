package ws

// Inbound message types. Every client frame is a JSON object with a "type"
// field; the remaining fields depend on the type.
const (
	MsgJoin              = "join"
	MsgPrepareIngredient = "prepare_ingredient"
	MsgTakeIngredient    = "take_ingredient"
	MsgBuildPizza        = "build_pizza"
	MsgMoveToOven        = "move_to_oven"
	MsgToggleOven        = "toggle_oven"
	MsgStartRound        = "start_round"
	MsgTimeRequest       = "time_request"
)

type JoinMessage struct {
	Type       string `json:"type"`
	Room       string `json:"room"`
	Passphrase string `json:"passphrase"`
}

type PrepareMessage struct {
	Type string `json:"type"`
	Kind string `json:"ingredient_type"`
}

type TakeMessage struct {
	Type         string `json:"type"`
	IngredientID string `json:"ingredient_id"`
	Target       string `json:"target_player_sid,omitempty"`
}

type BuildMessage struct {
	Type   string `json:"type"`
	Target string `json:"target_player_sid,omitempty"`
}

type MoveMessage struct {
	Type    string `json:"type"`
	PizzaID string `json:"pizza_id"`
}

type ToggleMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

// Envelope wraps every outbound event: the event name plus its payload.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}
