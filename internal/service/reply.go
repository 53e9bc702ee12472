package service

// Button is one keyboard button. Data is the callback payload for inline
// buttons and empty for plain reply-keyboard buttons.
type Button struct {
	Text string
	Data string
}

// Reply is an outbound prompt described independently of the transport.
// The telegram package renders it into real markup.
type Reply struct {
	Text           string
	Keyboard       [][]Button // reply keyboard rows
	Inline         [][]Button // inline keyboard rows
	RemoveKeyboard bool
	OneTime        bool
}

func text(s string) Reply {
	return Reply{Text: s}
}

func row(buttons ...Button) []Button {
	return buttons
}

func btn(text string) Button {
	return Button{Text: text}
}

func inlineBtn(text, data string) Button {
	return Button{Text: text, Data: data}
}
