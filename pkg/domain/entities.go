// Package domain defines the records tracked by assetdesk screens, the change
// and notification value types, and the error taxonomy shared by every
// collection controller.
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EntityKind identifies the resource a collection holds.
type EntityKind string

// Supported resource kinds, one per admin screen.
const (
	// EntityAsset identifies hardware asset records.
	EntityAsset EntityKind = "asset"
	// EntityUser identifies personnel identities keyed by e-mail.
	EntityUser EntityKind = "user"
	// EntityBlock identifies building block records.
	EntityBlock EntityKind = "block"
	// EntityDepartment identifies organisational departments.
	EntityDepartment EntityKind = "department"
	// EntityAllocation identifies asset-to-person allocations (audits).
	EntityAllocation EntityKind = "allocation"
	// EntityTransfer identifies inter-department transfer requests.
	EntityTransfer EntityKind = "transfer"
	// EntityDisposal identifies asset disposal records.
	EntityDisposal EntityKind = "disposal"
	// EntityDecommission identifies decommissioned asset records.
	EntityDecommission EntityKind = "decommission"
	// EntityArchive identifies archived asset records.
	EntityArchive EntityKind = "archive"
	// EntityReport identifies generated report records.
	EntityReport EntityKind = "report"
)

// Kinds lists every supported entity kind in screen order.
func Kinds() []EntityKind {
	return []EntityKind{
		EntityAsset, EntityUser, EntityBlock, EntityDepartment, EntityAllocation,
		EntityTransfer, EntityDisposal, EntityDecommission, EntityArchive, EntityReport,
	}
}

// Plural returns the resource name used in export filenames and CLI arguments.
func (k EntityKind) Plural() string {
	return string(k) + "s"
}

// Asset is a tracked piece of hardware.
type Asset struct {
	ID           string          `json:"id" yaml:"id"`
	Name         string          `json:"name" yaml:"name" validate:"required"`
	Category     string          `json:"category" yaml:"category" validate:"required"`
	Status       string          `json:"status" yaml:"status" validate:"required,oneof=Available Assigned Maintenance Retired"`
	Department   string          `json:"department" yaml:"department"`
	SerialNumber string          `json:"serial_number" yaml:"serial_number"`
	Cost         decimal.Decimal `json:"cost" yaml:"cost"`
	PurchasedOn  string          `json:"purchased_on" yaml:"purchased_on" validate:"omitempty,datetime=2006-01-02"`
}

// User is a personnel identity. The e-mail address is the identity field.
type User struct {
	Email      string `json:"email" yaml:"email" validate:"required,email"`
	Name       string `json:"name" yaml:"name" validate:"required"`
	Role       string `json:"role" yaml:"role" validate:"required,oneof=Admin Manager Staff Auditor"`
	Department string `json:"department" yaml:"department"`
	Status     string `json:"status" yaml:"status" validate:"required,oneof=Active Inactive"`
}

// Block is a physical building block housing departments.
type Block struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name" validate:"required"`
	Location string `json:"location" yaml:"location"`
	Floors   int    `json:"floors" yaml:"floors" validate:"gte=0"`
	Status   string `json:"status" yaml:"status" validate:"required,oneof=Active Inactive"`
}

// Department is an organisational unit that owns assets.
type Department struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name" validate:"required"`
	Head   string `json:"head" yaml:"head"`
	Block  string `json:"block" yaml:"block"`
	Status string `json:"status" yaml:"status" validate:"required,oneof=Active Inactive"`
}

// Allocation assigns an asset to a person; the audit screen lists these.
type Allocation struct {
	ID          string `json:"id" yaml:"id"`
	AssetID     string `json:"asset_id" yaml:"asset_id" validate:"required"`
	AssetName   string `json:"asset_name" yaml:"asset_name"`
	Assignee    string `json:"assignee" yaml:"assignee" validate:"required"`
	Department  string `json:"department" yaml:"department"`
	Status      string `json:"status" yaml:"status" validate:"required,oneof=Active Returned Overdue"`
	AllocatedOn string `json:"allocated_on" yaml:"allocated_on" validate:"omitempty,datetime=2006-01-02"`
}

// Transfer moves an asset between departments.
type Transfer struct {
	ID             string `json:"id" yaml:"id"`
	AssetID        string `json:"asset_id" yaml:"asset_id" validate:"required"`
	AssetName      string `json:"asset_name" yaml:"asset_name"`
	FromDepartment string `json:"from_department" yaml:"from_department" validate:"required"`
	ToDepartment   string `json:"to_department" yaml:"to_department" validate:"required,nefield=FromDepartment"`
	Status         string `json:"status" yaml:"status" validate:"required,oneof=Pending Approved Rejected Completed"`
	RequestedOn    string `json:"requested_on" yaml:"requested_on" validate:"omitempty,datetime=2006-01-02"`
}

// Disposal records the removal of an asset from the estate.
type Disposal struct {
	ID        string          `json:"id" yaml:"id"`
	AssetID   string          `json:"asset_id" yaml:"asset_id" validate:"required"`
	AssetName string          `json:"asset_name" yaml:"asset_name"`
	Method    string          `json:"method" yaml:"method" validate:"required,oneof=Recycled Sold Donated Destroyed"`
	Reason    string          `json:"reason" yaml:"reason"`
	Value     decimal.Decimal `json:"value" yaml:"value"`
	Status    string          `json:"status" yaml:"status" validate:"required,oneof=Pending Completed"`
}

// Decommission records an asset taken out of service.
type Decommission struct {
	ID               string `json:"id" yaml:"id"`
	AssetID          string `json:"asset_id" yaml:"asset_id" validate:"required"`
	AssetName        string `json:"asset_name" yaml:"asset_name"`
	Reason           string `json:"reason" yaml:"reason" validate:"required"`
	Status           string `json:"status" yaml:"status" validate:"required,oneof=Scheduled Completed"`
	DecommissionedOn string `json:"decommissioned_on" yaml:"decommissioned_on" validate:"omitempty,datetime=2006-01-02"`
}

// Archive is a read-mostly record of a retired asset.
type Archive struct {
	ID         string `json:"id" yaml:"id"`
	AssetID    string `json:"asset_id" yaml:"asset_id" validate:"required"`
	AssetName  string `json:"asset_name" yaml:"asset_name"`
	Category   string `json:"category" yaml:"category"`
	Reason     string `json:"reason" yaml:"reason"`
	ArchivedOn string `json:"archived_on" yaml:"archived_on" validate:"omitempty,datetime=2006-01-02"`
}

// Report is a generated summary document.
type Report struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title" validate:"required"`
	Type        string `json:"type" yaml:"type" validate:"required,oneof=Inventory Allocation Disposal Audit"`
	Department  string `json:"department" yaml:"department"`
	Status      string `json:"status" yaml:"status" validate:"required,oneof=Draft Published"`
	GeneratedOn string `json:"generated_on" yaml:"generated_on" validate:"omitempty,datetime=2006-01-02"`
}

// ParseKind resolves a singular or plural resource name to its kind.
func ParseKind(name string) (EntityKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds() {
		if name == string(k) || name == k.Plural() {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown resource %q", name)
}
