package policy

import (
	"time"

	"github.com/upb/agent-authz/models"
)

// Built-in agent identities.
const (
	AgentInvoice         = "invoice-agent"
	AgentPayment         = "payment-agent"
	AgentCustomerService = "customer-service-agent"
	AgentAnalytics       = "analytics-agent"
)

// PaymentApprovalLimit is the amount above which payments need an explicit
// approval flag.
const PaymentApprovalLimit = 10000

// Business hours window for time-boxed access, in the evaluator's time zone.
const (
	BusinessHoursStart = 9
	BusinessHoursEnd   = 17
)

// Deny reason texts emitted by the built-in rule families. Used verbatim in
// audit output.
const (
	ReasonOutsideBusinessHours = "invoice data may only be read during business hours (09:00-17:00)"
	ReasonApprovalRequired     = "payments above 10000.00 require explicit approval"
	ReasonReadOnlyAccess       = "customer service access is read-only; write actions are never granted"
	ReasonSensitiveResource    = "resource is in the sensitive data set and may contain PII"
)

var (
	customerServiceResourceTypes = []string{"customer", "order", "ticket"}
	writeActions                 = []string{"create", "update", "delete", "write"}

	analyticsReportingTables = []string{
		"orders_summary",
		"revenue_by_region",
		"product_metrics",
		"daily_active_agents",
	}
	// Maintained separately from the allowlist so adding a reporting table
	// can never silently expose a sensitive one.
	sensitiveTables = []string{"customers", "payment_methods", "user_emails"}
)

// DefaultDefinitions returns the built-in rule families:
//
//   - invoice: time-boxed read access during business hours
//   - payment: auto-grant under the limit, approval override above it
//   - customer-service: read-only on an enumerated resource-type set
//   - analytics: reporting-table allowlist with sensitive-data exclusion
//
// Each deny-reason condition is the negation of its allow condition, so an
// allowed request never carries a reason from its own family.
func DefaultDefinitions() []models.RuleDefinition {
	return []models.RuleDefinition{
		{
			ID:          "invoice-read-business-hours",
			Description: "Invoice agent may read invoices during business hours.",
			AgentID:     AgentInvoice,
			Action:      "read",
			Effect:      models.EffectAllow,
			Conditions: []models.ConditionDefinition{
				{Kind: models.ConditionWithinHours, StartHour: BusinessHoursStart, EndHour: BusinessHoursEnd},
			},
			Enabled: true,
		},
		{
			ID:          "invoice-read-after-hours",
			Description: "Audit reason for invoice reads outside business hours.",
			AgentID:     AgentInvoice,
			Action:      "read",
			Effect:      models.EffectDenyReason,
			Reason:      ReasonOutsideBusinessHours,
			Conditions: []models.ConditionDefinition{
				{Kind: models.ConditionOutsideHours, StartHour: BusinessHoursStart, EndHour: BusinessHoursEnd},
			},
			Enabled: true,
		},

		{
			ID:          "payment-under-limit",
			Description: "Payment agent may process payments up to the approval limit.",
			AgentID:     AgentPayment,
			Action:      "process_payment",
			Effect:      models.EffectAllow,
			Conditions: []models.ConditionDefinition{
				{Kind: models.ConditionAmountAtMost, Limit: PaymentApprovalLimit},
			},
			Enabled: true,
		},
		{
			ID:          "payment-approved-over-limit",
			Description: "Over-limit payments go through with an explicit approval flag.",
			AgentID:     AgentPayment,
			Action:      "process_payment",
			Effect:      models.EffectAllow,
			Conditions: []models.ConditionDefinition{
				{Kind: models.ConditionAmountAboveWithApproval, Limit: PaymentApprovalLimit},
			},
			Enabled: true,
		},
		{
			ID:          "payment-over-limit-unapproved",
			Description: "Audit reason for over-limit payments without approval.",
			AgentID:     AgentPayment,
			Action:      "process_payment",
			Effect:      models.EffectDenyReason,
			Reason:      ReasonApprovalRequired,
			Conditions: []models.ConditionDefinition{
				{Kind: models.ConditionAmountAboveWithoutApproval, Limit: PaymentApprovalLimit},
			},
			Enabled: true,
		},

		{
			ID:          "customer-service-read",
			Description: "Customer service agent may read customer-facing resource types.",
			AgentID:     AgentCustomerService,
			Action:      "read",
			Effect:      models.EffectAllow,
			Conditions: []models.ConditionDefinition{
				{Kind: models.ConditionInSet, Field: models.FieldResourceType, Values: customerServiceResourceTypes},
			},
			Enabled: true,
		},
		{
			ID:          "customer-service-no-writes",
			Description: "Audit reason for any write attempt by the customer service agent.",
			AgentID:     AgentCustomerService,
			// No action scope: the condition covers the whole write verb
			// family.
			Effect: models.EffectDenyReason,
			Reason: ReasonReadOnlyAccess,
			Conditions: []models.ConditionDefinition{
				{Kind: models.ConditionInSet, Field: models.FieldAction, Values: writeActions},
			},
			Enabled: true,
		},

		{
			ID:          "analytics-read-reporting",
			Description: "Analytics agent may read allowlisted reporting tables that are not sensitive.",
			AgentID:     AgentAnalytics,
			Action:      "read",
			Effect:      models.EffectAllow,
			Conditions: []models.ConditionDefinition{
				{Kind: models.ConditionInSet, Field: models.FieldResourceName, Values: analyticsReportingTables},
				{Kind: models.ConditionNotInSet, Field: models.FieldResourceName, Values: sensitiveTables},
			},
			Enabled: true,
		},
		{
			ID:          "analytics-sensitive-blocked",
			Description: "Audit reason for analytics reads of sensitive tables.",
			AgentID:     AgentAnalytics,
			Action:      "read",
			Effect:      models.EffectDenyReason,
			Reason:      ReasonSensitiveResource,
			Conditions: []models.ConditionDefinition{
				{Kind: models.ConditionInSet, Field: models.FieldResourceName, Values: sensitiveTables},
			},
			Enabled: true,
		},
	}
}

// DefaultRuleSet compiles the built-in rule families for the given time
// zone.
func DefaultRuleSet(loc *time.Location) (*RuleSet, error) {
	return Compile(DefaultDefinitions(), CompileOptions{Location: loc})
}
