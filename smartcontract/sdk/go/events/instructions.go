package events

import (
	anchor "github.com/malbeclabs/anchor-go/sdk/anchor/go"
)

var (
	InitializeDiscriminator = anchor.InstructionDiscriminator("initialize")
	TestEventDiscriminator  = anchor.InstructionDiscriminator("test_event")
)

// InitializeArgs takes no accounts and emits MyEvent{Data: 5, Label: "hello"}.
type InitializeArgs struct{}

func (InitializeArgs) Data() ([]byte, error) {
	return anchor.InstructionData(InitializeDiscriminator, nil)
}

// TestEventArgs emits MyOtherEvent{Data: 6, Label: "bye"}.
type TestEventArgs struct{}

func (TestEventArgs) Data() ([]byte, error) {
	return anchor.InstructionData(TestEventDiscriminator, nil)
}
