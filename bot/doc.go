// Package bot is the Telegram front end. It handles the subscriber-facing
// commands (/start, /verify, /setclass, /removeclass, /listclasses,
// /stop) and pushes agendas to subscribers whose group changed.
//
// Delivery is at-most-once per detected change: a subscriber's last-seen
// watermark only advances after Telegram confirmed the send. A permanent
// rejection (the subscriber blocked the bot) removes the subscriber; a
// transient failure leaves the watermark untouched so the push is retried
// on the next pass.
package bot
