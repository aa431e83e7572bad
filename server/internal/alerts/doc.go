// Package alerts implements the rule evaluation engine and webhook delivery
// for NodePulse alerting. Rules are evaluated against node health snapshots;
// webhooks are delivered to Teams, Slack, PagerDuty, or generic HTTP targets.
package alerts
