// Package cli provides the interactive SoraPrompter command-line client.
//
// It restores the stored session, then runs a REPL over the account engine,
// the generation flow and the admin view:
//   - register / login / logout / status
//   - generate <path>: turn an image or video into a video prompt
//   - upgrade vip|svip: buy a membership after confirming the price
//   - admin: password-gated statistics; generations are free in admin mode
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
