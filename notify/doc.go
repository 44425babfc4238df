// Package notify delivers review-workflow events to humans.
//
// Core types:
//   - Event: something a reviewer cares about (a draft awaiting review,
//     an approval, a failed stage)
//   - Notifier: interface for delivery channels
//   - LogNotifier, WebhookNotifier, SlackNotifier: built-in channels
//   - MultiNotifier: fan-out to several channels
//
// Example usage:
//
//	n := notify.NewMultiNotifier(
//	    notify.NewLogNotifier(nil),
//	    notify.NewSlackNotifier(webhookURL),
//	)
//	n.Notify(ctx, notify.Event{
//	    Type:         notify.EventDraftReady,
//	    Project:      "proj_x1",
//	    ArtifactType: "ProblemFraming",
//	    Message:      "draft ready for review",
//	})
package notify
