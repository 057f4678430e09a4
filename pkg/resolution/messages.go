package resolution

import (
	"fmt"

	"github.com/socvr/chatbot-go/pkg/chat"
	"github.com/socvr/chatbot-go/pkg/eligibility"
	"github.com/socvr/chatbot-go/pkg/model"
)

func requestNotFound() *Failure {
	var b chat.MessageBuilder
	b.AppendText("I can't find that permission request. Run ").
		AppendCode("view requests").
		AppendText(" to see the current list.")
	return &Failure{Kind: KindRequestNotFound, Message: b.String()}
}

func alreadyProcessed() *Failure {
	return &Failure{Kind: KindAlreadyProcessed, Message: "That request has already been handled."}
}

func insufficientPermission(group model.Group) *Failure {
	return &Failure{
		Kind:    KindInsufficientPermission,
		Message: fmt.Sprintf("You need to be in the %s group in order to process requests for it.", group),
	}
}

func successMessage(requester string, group model.Group, outcome eligibility.Outcome) string {
	if outcome == eligibility.OutcomeApprove {
		var b chat.MessageBuilder
		b.AppendPing(requester).AppendText(fmt.Sprintf("has been added to the %s group.", group))
		return b.String()
	}
	return fmt.Sprintf("%s, your request to join the %s group has been rejected.", chat.Ping(requester), group)
}
