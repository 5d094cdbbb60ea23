package codec

// CallFrame is the ordered triple [id, key, payload] carried by a call.
type CallFrame struct {
	ID      string
	Key     string
	Payload interface{}
}

// EncodeCall renders a call frame in its exact wire field order.
func EncodeCall(id string, key string, payload interface{}) string {
	return Encode([]interface{}{id, key, payload})
}

// DecodeCall parses a call frame. It returns nil unless the text holds a
// three element array whose first two elements are strings.
func DecodeCall(text string) *CallFrame {
	return CallFrameOf(Decode(text))
}

// CallFrameOf interprets an already decoded value as a call frame.
func CallFrameOf(v interface{}) *CallFrame {
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 3 {
		return nil
	}
	id, ok := arr[0].(string)
	if !ok {
		return nil
	}
	key, ok := arr[1].(string)
	if !ok {
		return nil
	}
	return &CallFrame{ID: id, Key: key, Payload: arr[2]}
}
