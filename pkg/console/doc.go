/*
Package console drives one desk from a line-oriented stream of command
envelopes. It is the piece behind `patchbay console`: an operator types
envelopes at a prompt, or a cue system pipes NDJSON into stdin, and every
line comes back as a response envelope.

The IOHandler strategy separates the interaction mode (human text with a
prompt vs structured JSON lines) from the execution loop, and a
CommandInterceptor can gate commands before they reach the desk, e.g.
asking for confirmation before a full state rewrite.
*/
package console
