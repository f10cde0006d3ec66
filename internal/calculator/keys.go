package calculator

// Action names the editor operation an input event maps to.
type Action string

const (
	ActionNone     Action = ""
	ActionDigit    Action = "digit"
	ActionOperator Action = "operator"
	ActionDecimal  Action = "decimal"
	ActionPercent  Action = "percent"
	ActionDelete   Action = "delete"
	ActionClear    Action = "clear"
	ActionEvaluate Action = "evaluate"
	ActionReuse    Action = "reuse"
	ActionClearAll Action = "clear_history"
)

// KeyEvent is a physical keyboard press. Key uses the DOM key names
// ("7", "Backspace", "Enter", ...).
type KeyEvent struct {
	Key  string
	Ctrl bool
	Alt  bool
	Meta bool
}

type command struct {
	action Action
	arg    string
}

func keyCommand(ev KeyEvent) (command, bool) {
	if ev.Ctrl || ev.Alt || ev.Meta {
		return command{}, false
	}

	switch k := ev.Key; k {
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return command{ActionDigit, k}, true
	case "Backspace":
		return command{action: ActionDelete}, true
	case "Delete":
		return command{action: ActionClear}, true
	case "Enter", "=":
		return command{action: ActionEvaluate}, true
	case "+", "-", "*", "/":
		return command{ActionOperator, k}, true
	case ",", ".":
		return command{action: ActionDecimal}, true
	case "%":
		return command{action: ActionPercent}, true
	}
	return command{}, false
}

var buttonCommands = map[string]command{
	"button-00":       {ActionDigit, "00"},
	"button-coma":     {action: ActionDecimal},
	"button-plus":     {ActionOperator, "+"},
	"button-minus":    {ActionOperator, "-"},
	"button-multiply": {ActionOperator, "*"},
	"button-divide":   {ActionOperator, "/"},
	"button-percent":  {action: ActionPercent},
	"button-delete":   {action: ActionDelete},
	"clear":           {action: ActionClear},
	"button-equals":   {action: ActionEvaluate},
}

func init() {
	for d := '0'; d <= '9'; d++ {
		buttonCommands["button-"+string(d)] = command{ActionDigit, string(d)}
	}
}

func buttonCommand(id string) (command, bool) {
	cmd, ok := buttonCommands[id]
	return cmd, ok
}

// ButtonIDs lists the keypad button ids understood by Press.
func ButtonIDs() []string {
	ids := make([]string, 0, len(buttonCommands))
	for d := '0'; d <= '9'; d++ {
		ids = append(ids, "button-"+string(d))
	}
	return append(ids,
		"button-00", "button-coma",
		"button-plus", "button-minus", "button-multiply", "button-divide",
		"button-percent", "button-delete", "clear", "button-equals",
	)
}
