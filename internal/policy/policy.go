// Package policy answers capability questions for already-resolved roles.
//
// Role resolution (which actor holds which roles) is owned by the identity
// service; this table only maps role codes to the habilitations the engine's
// endpoints gate on. Keep the codes aligned with the national role register.
package policy

// Permissions gated inside this service.
const (
	// PermLotEnforcement allows blocking and seizing lots in the field.
	PermLotEnforcement = "profil_controleur"
	// PermTaxRecording allows recording DTSPM taxation for a taxable event.
	PermTaxRecording = "supervision_recettes"
	// PermAuditRead allows reading the audit trail.
	PermAuditRead = "audit_logs"
)

// rolePermissions is the subset of the national role register this engine
// consults. Dashboards, exports and territory administration keep their own
// tables in their own services.
var rolePermissions = map[string][]string{
	"admin":        {PermLotEnforcement, PermTaxRecording, PermAuditRead},
	"dirigeant":    {PermLotEnforcement, PermTaxRecording, PermAuditRead},
	"controleur":   {PermLotEnforcement},
	"mmrs":         {PermLotEnforcement},
	"dgd":          {PermLotEnforcement},
	"police":       {PermLotEnforcement},
	"gendarmerie":  {PermLotEnforcement},
	"forets":       {PermLotEnforcement},
	"tresor":       {PermTaxRecording},
	"mef":          {PermTaxRecording},
	"bfm":          {PermTaxRecording},
	"cour_comptes": {PermAuditRead},
}

// Allowed reports whether any of the caller's roles carries the permission.
func Allowed(roles []string, permission string) bool {
	for _, role := range roles {
		for _, p := range rolePermissions[role] {
			if p == permission {
				return true
			}
		}
	}
	return false
}
