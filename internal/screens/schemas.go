package screens

import (
	"regexp"
	"strconv"
	"time"

	"assetdesk/internal/collection"
	"assetdesk/pkg/domain"
)

// Env supplies the time and randomness behind generated identities. The zero
// value uses the system clock and math/rand.
type Env struct {
	Now  func() time.Time
	Rand collection.RandomSource
}

func field[T any](name string, get func(T) string) collection.Field[T] {
	return collection.Field[T]{Name: name, Get: get}
}

func text[T any](header string, v func(T) string) collection.Column[T] {
	return collection.Column[T]{Header: header, Kind: collection.Text, Value: v}
}

func enum[T any](header string, v func(T) string) collection.Column[T] {
	return collection.Column[T]{Header: header, Kind: collection.Enum, Value: v}
}

func number[T any](header string, v func(T) string) collection.Column[T] {
	return collection.Column[T]{Header: header, Kind: collection.Number, Value: v}
}

// AssetSchema describes the asset register: AST-NNN random identities.
func (e Env) AssetSchema() collection.Schema[domain.Asset] {
	return collection.Schema[domain.Asset]{
		Entity:         domain.EntityAsset,
		IdentityOf:     func(a domain.Asset) string { return a.ID },
		AssignIdentity: func(a *domain.Asset, id string) { a.ID = id },
		Policy:         collection.RandomPolicy{Prefix: "AST", Rand: e.Rand},
		Searchable: []collection.Field[domain.Asset]{
			field("name", func(a domain.Asset) string { return a.Name }),
			field("id", func(a domain.Asset) string { return a.ID }),
			field("serial_number", func(a domain.Asset) string { return a.SerialNumber }),
		},
		Filterable: []collection.Field[domain.Asset]{
			field("category", func(a domain.Asset) string { return a.Category }),
			field("status", func(a domain.Asset) string { return a.Status }),
			field("department", func(a domain.Asset) string { return a.Department }),
		},
		Columns: []collection.Column[domain.Asset]{
			text("Asset ID", func(a domain.Asset) string { return a.ID }),
			text("Name", func(a domain.Asset) string { return a.Name }),
			enum("Category", func(a domain.Asset) string { return a.Category }),
			enum("Status", func(a domain.Asset) string { return a.Status }),
			text("Department", func(a domain.Asset) string { return a.Department }),
			text("Serial Number", func(a domain.Asset) string { return a.SerialNumber }),
			number("Cost", func(a domain.Asset) string { return a.Cost.StringFixed(2) }),
			text("Purchase Date", func(a domain.Asset) string { return a.PurchasedOn }),
		},
		Validate: structRules[domain.Asset](domain.EntityAsset),
	}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserSchema describes personnel keyed by e-mail address.
func (e Env) UserSchema() collection.Schema[domain.User] {
	return collection.Schema[domain.User]{
		Entity:         domain.EntityUser,
		IdentityField:  "email",
		IdentityOf:     func(u domain.User) string { return u.Email },
		AssignIdentity: func(u *domain.User, id string) { u.Email = id },
		Policy:         collection.FieldPolicy{Pattern: emailPattern, Description: "an e-mail address"},
		Searchable: []collection.Field[domain.User]{
			field("name", func(u domain.User) string { return u.Name }),
			field("email", func(u domain.User) string { return u.Email }),
		},
		Filterable: []collection.Field[domain.User]{
			field("role", func(u domain.User) string { return u.Role }),
			field("department", func(u domain.User) string { return u.Department }),
			field("status", func(u domain.User) string { return u.Status }),
		},
		Columns: []collection.Column[domain.User]{
			text("Name", func(u domain.User) string { return u.Name }),
			text("Email", func(u domain.User) string { return u.Email }),
			enum("Role", func(u domain.User) string { return u.Role }),
			text("Department", func(u domain.User) string { return u.Department }),
			enum("Status", func(u domain.User) string { return u.Status }),
		},
		Validate: structRules[domain.User](domain.EntityUser),
		PageSize: 6,
	}
}

// BlockSchema describes building blocks: six-character alphanumeric codes.
func (e Env) BlockSchema() collection.Schema[domain.Block] {
	return collection.Schema[domain.Block]{
		Entity:         domain.EntityBlock,
		IdentityOf:     func(b domain.Block) string { return b.ID },
		AssignIdentity: func(b *domain.Block, id string) { b.ID = id },
		Policy:         collection.AlnumPolicy{Length: 6, Rand: e.Rand},
		Searchable: []collection.Field[domain.Block]{
			field("name", func(b domain.Block) string { return b.Name }),
			field("id", func(b domain.Block) string { return b.ID }),
			field("location", func(b domain.Block) string { return b.Location }),
		},
		Filterable: []collection.Field[domain.Block]{
			field("status", func(b domain.Block) string { return b.Status }),
			field("location", func(b domain.Block) string { return b.Location }),
		},
		Columns: []collection.Column[domain.Block]{
			text("Block ID", func(b domain.Block) string { return b.ID }),
			text("Name", func(b domain.Block) string { return b.Name }),
			text("Location", func(b domain.Block) string { return b.Location }),
			number("Floors", func(b domain.Block) string { return strconv.Itoa(b.Floors) }),
			enum("Status", func(b domain.Block) string { return b.Status }),
		},
		Validate: structRules[domain.Block](domain.EntityBlock),
	}
}

// DepartmentSchema describes departments: DEPT- plus a time-derived code.
func (e Env) DepartmentSchema() collection.Schema[domain.Department] {
	return collection.Schema[domain.Department]{
		Entity:         domain.EntityDepartment,
		IdentityOf:     func(d domain.Department) string { return d.ID },
		AssignIdentity: func(d *domain.Department, id string) { d.ID = id },
		Policy:         collection.TimestampPolicy{Prefix: "DEPT", Now: e.Now, Rand: e.Rand},
		Searchable: []collection.Field[domain.Department]{
			field("name", func(d domain.Department) string { return d.Name }),
			field("head", func(d domain.Department) string { return d.Head }),
			field("id", func(d domain.Department) string { return d.ID }),
		},
		Filterable: []collection.Field[domain.Department]{
			field("status", func(d domain.Department) string { return d.Status }),
			field("block", func(d domain.Department) string { return d.Block }),
		},
		Columns: []collection.Column[domain.Department]{
			text("Department ID", func(d domain.Department) string { return d.ID }),
			text("Name", func(d domain.Department) string { return d.Name }),
			text("Head", func(d domain.Department) string { return d.Head }),
			text("Block", func(d domain.Department) string { return d.Block }),
			enum("Status", func(d domain.Department) string { return d.Status }),
		},
		Validate: structRules[domain.Department](domain.EntityDepartment),
	}
}

// AllocationSchema describes the audit screen's asset allocations.
func (e Env) AllocationSchema() collection.Schema[domain.Allocation] {
	return collection.Schema[domain.Allocation]{
		Entity:         domain.EntityAllocation,
		IdentityOf:     func(a domain.Allocation) string { return a.ID },
		AssignIdentity: func(a *domain.Allocation, id string) { a.ID = id },
		Policy:         collection.SequencePolicy{Prefix: "ALC"},
		Searchable: []collection.Field[domain.Allocation]{
			field("assignee", func(a domain.Allocation) string { return a.Assignee }),
			field("asset_name", func(a domain.Allocation) string { return a.AssetName }),
			field("asset_id", func(a domain.Allocation) string { return a.AssetID }),
			field("department", func(a domain.Allocation) string { return a.Department }),
		},
		Filterable: []collection.Field[domain.Allocation]{
			field("status", func(a domain.Allocation) string { return a.Status }),
			field("department", func(a domain.Allocation) string { return a.Department }),
		},
		Columns: []collection.Column[domain.Allocation]{
			text("Allocation ID", func(a domain.Allocation) string { return a.ID }),
			text("Asset ID", func(a domain.Allocation) string { return a.AssetID }),
			text("Asset Name", func(a domain.Allocation) string { return a.AssetName }),
			text("Assignee", func(a domain.Allocation) string { return a.Assignee }),
			text("Department", func(a domain.Allocation) string { return a.Department }),
			enum("Status", func(a domain.Allocation) string { return a.Status }),
			text("Allocated On", func(a domain.Allocation) string { return a.AllocatedOn }),
		},
		Validate: structRules[domain.Allocation](domain.EntityAllocation),
	}
}

// TransferSchema describes inter-department transfer requests.
func (e Env) TransferSchema() collection.Schema[domain.Transfer] {
	return collection.Schema[domain.Transfer]{
		Entity:         domain.EntityTransfer,
		IdentityOf:     func(t domain.Transfer) string { return t.ID },
		AssignIdentity: func(t *domain.Transfer, id string) { t.ID = id },
		Policy:         collection.SequencePolicy{Prefix: "TRF"},
		Searchable: []collection.Field[domain.Transfer]{
			field("asset_name", func(t domain.Transfer) string { return t.AssetName }),
			field("asset_id", func(t domain.Transfer) string { return t.AssetID }),
			field("id", func(t domain.Transfer) string { return t.ID }),
		},
		Filterable: []collection.Field[domain.Transfer]{
			field("status", func(t domain.Transfer) string { return t.Status }),
			field("from_department", func(t domain.Transfer) string { return t.FromDepartment }),
			field("to_department", func(t domain.Transfer) string { return t.ToDepartment }),
		},
		Columns: []collection.Column[domain.Transfer]{
			text("Transfer ID", func(t domain.Transfer) string { return t.ID }),
			text("Asset ID", func(t domain.Transfer) string { return t.AssetID }),
			text("Asset Name", func(t domain.Transfer) string { return t.AssetName }),
			text("From", func(t domain.Transfer) string { return t.FromDepartment }),
			text("To", func(t domain.Transfer) string { return t.ToDepartment }),
			enum("Status", func(t domain.Transfer) string { return t.Status }),
			text("Requested On", func(t domain.Transfer) string { return t.RequestedOn }),
		},
		Validate: structRules[domain.Transfer](domain.EntityTransfer),
	}
}

// DisposalSchema describes disposals: DSP-NNN random identities.
func (e Env) DisposalSchema() collection.Schema[domain.Disposal] {
	return collection.Schema[domain.Disposal]{
		Entity:         domain.EntityDisposal,
		IdentityOf:     func(d domain.Disposal) string { return d.ID },
		AssignIdentity: func(d *domain.Disposal, id string) { d.ID = id },
		Policy:         collection.RandomPolicy{Prefix: "DSP", Rand: e.Rand},
		Searchable: []collection.Field[domain.Disposal]{
			field("asset_name", func(d domain.Disposal) string { return d.AssetName }),
			field("asset_id", func(d domain.Disposal) string { return d.AssetID }),
			field("reason", func(d domain.Disposal) string { return d.Reason }),
		},
		Filterable: []collection.Field[domain.Disposal]{
			field("method", func(d domain.Disposal) string { return d.Method }),
			field("status", func(d domain.Disposal) string { return d.Status }),
		},
		Columns: []collection.Column[domain.Disposal]{
			text("Disposal ID", func(d domain.Disposal) string { return d.ID }),
			text("Asset ID", func(d domain.Disposal) string { return d.AssetID }),
			text("Asset Name", func(d domain.Disposal) string { return d.AssetName }),
			enum("Method", func(d domain.Disposal) string { return d.Method }),
			text("Reason", func(d domain.Disposal) string { return d.Reason }),
			number("Value", func(d domain.Disposal) string { return d.Value.StringFixed(2) }),
			enum("Status", func(d domain.Disposal) string { return d.Status }),
		},
		Validate: structRules[domain.Disposal](domain.EntityDisposal),
	}
}

// DecommissionSchema describes decommissioned assets.
func (e Env) DecommissionSchema() collection.Schema[domain.Decommission] {
	return collection.Schema[domain.Decommission]{
		Entity:         domain.EntityDecommission,
		IdentityOf:     func(d domain.Decommission) string { return d.ID },
		AssignIdentity: func(d *domain.Decommission, id string) { d.ID = id },
		Policy:         collection.SequencePolicy{Prefix: "DCM"},
		Searchable: []collection.Field[domain.Decommission]{
			field("asset_name", func(d domain.Decommission) string { return d.AssetName }),
			field("asset_id", func(d domain.Decommission) string { return d.AssetID }),
			field("reason", func(d domain.Decommission) string { return d.Reason }),
		},
		Filterable: []collection.Field[domain.Decommission]{
			field("status", func(d domain.Decommission) string { return d.Status }),
		},
		Columns: []collection.Column[domain.Decommission]{
			text("Record ID", func(d domain.Decommission) string { return d.ID }),
			text("Asset ID", func(d domain.Decommission) string { return d.AssetID }),
			text("Asset Name", func(d domain.Decommission) string { return d.AssetName }),
			text("Reason", func(d domain.Decommission) string { return d.Reason }),
			enum("Status", func(d domain.Decommission) string { return d.Status }),
			text("Decommissioned On", func(d domain.Decommission) string { return d.DecommissionedOn }),
		},
		Validate: structRules[domain.Decommission](domain.EntityDecommission),
	}
}

// ArchiveSchema describes archived assets: ARC-YYYY-NNN identities.
func (e Env) ArchiveSchema() collection.Schema[domain.Archive] {
	return collection.Schema[domain.Archive]{
		Entity:         domain.EntityArchive,
		IdentityOf:     func(a domain.Archive) string { return a.ID },
		AssignIdentity: func(a *domain.Archive, id string) { a.ID = id },
		Policy:         collection.RandomPolicy{Prefix: "ARC", WithYear: true, Now: e.Now, Rand: e.Rand},
		Searchable: []collection.Field[domain.Archive]{
			field("asset_name", func(a domain.Archive) string { return a.AssetName }),
			field("asset_id", func(a domain.Archive) string { return a.AssetID }),
			field("id", func(a domain.Archive) string { return a.ID }),
		},
		Filterable: []collection.Field[domain.Archive]{
			field("category", func(a domain.Archive) string { return a.Category }),
			field("reason", func(a domain.Archive) string { return a.Reason }),
		},
		Columns: []collection.Column[domain.Archive]{
			text("Archive ID", func(a domain.Archive) string { return a.ID }),
			text("Asset ID", func(a domain.Archive) string { return a.AssetID }),
			text("Asset Name", func(a domain.Archive) string { return a.AssetName }),
			enum("Category", func(a domain.Archive) string { return a.Category }),
			text("Reason", func(a domain.Archive) string { return a.Reason }),
			text("Archived On", func(a domain.Archive) string { return a.ArchivedOn }),
		},
		Validate: structRules[domain.Archive](domain.EntityArchive),
		PageSize: 6,
	}
}

// ReportSchema describes generated reports.
func (e Env) ReportSchema() collection.Schema[domain.Report] {
	return collection.Schema[domain.Report]{
		Entity:         domain.EntityReport,
		IdentityOf:     func(r domain.Report) string { return r.ID },
		AssignIdentity: func(r *domain.Report, id string) { r.ID = id },
		Policy:         collection.SequencePolicy{Prefix: "RPT"},
		Searchable: []collection.Field[domain.Report]{
			field("title", func(r domain.Report) string { return r.Title }),
			field("id", func(r domain.Report) string { return r.ID }),
		},
		Filterable: []collection.Field[domain.Report]{
			field("type", func(r domain.Report) string { return r.Type }),
			field("status", func(r domain.Report) string { return r.Status }),
			field("department", func(r domain.Report) string { return r.Department }),
		},
		Columns: []collection.Column[domain.Report]{
			text("Report ID", func(r domain.Report) string { return r.ID }),
			text("Title", func(r domain.Report) string { return r.Title }),
			enum("Type", func(r domain.Report) string { return r.Type }),
			text("Department", func(r domain.Report) string { return r.Department }),
			enum("Status", func(r domain.Report) string { return r.Status }),
			text("Generated On", func(r domain.Report) string { return r.GeneratedOn }),
		},
		Validate: structRules[domain.Report](domain.EntityReport),
	}
}
