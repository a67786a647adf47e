// Package dispatch sends rendered letters through the single configured
// email channel and reports a normalized Result.
//
// The channel is built lazily by an Opener from an explicit ChannelConfig.
// Failures are classified as validation, configuration, channel or transport
// errors; nothing is retried.
package dispatch
