package persistence

import (
	"context"
	"errors"

	"github.com/harborworks/facilitydesk/modules/competency/domain/types"
	"github.com/jackc/pgx/v5"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TeamZonePGStore persists the team↔building zone relation.
type TeamZonePGStore struct {
	pool pgBeginner
}

func NewTeamZonePGStore(pool pgBeginner) *TeamZonePGStore {
	return &TeamZonePGStore{pool: pool}
}

func (s *TeamZonePGStore) Upsert(ctx context.Context, teamID string, buildingID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, `
INSERT INTO competency.team_zones (team_uuid, building_uuid)
VALUES ($1::uuid, $2::uuid)
ON CONFLICT (team_uuid, building_uuid) DO NOTHING
`, teamID, buildingID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *TeamZonePGStore) Delete(ctx context.Context, teamID string, buildingID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, `
DELETE FROM competency.team_zones WHERE team_uuid = $1::uuid AND building_uuid = $2::uuid
`, teamID, buildingID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *TeamZonePGStore) Exists(ctx context.Context, teamID string, buildingID string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var one int
	if err := tx.QueryRow(ctx, `
SELECT 1 FROM competency.team_zones WHERE team_uuid = $1::uuid AND building_uuid = $2::uuid
`, teamID, buildingID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *TeamZonePGStore) ListByTeam(ctx context.Context, teamID string) ([]types.TeamZone, error) {
	return s.list(ctx, `
SELECT team_uuid::text, building_uuid::text
FROM competency.team_zones
WHERE team_uuid = $1::uuid
ORDER BY building_uuid ASC
`, teamID)
}

func (s *TeamZonePGStore) ListByBuilding(ctx context.Context, buildingID string) ([]types.TeamZone, error) {
	return s.list(ctx, `
SELECT team_uuid::text, building_uuid::text
FROM competency.team_zones
WHERE building_uuid = $1::uuid
ORDER BY team_uuid ASC
`, buildingID)
}

func (s *TeamZonePGStore) list(ctx context.Context, query string, arg string) ([]types.TeamZone, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.TeamZone, 0)
	for rows.Next() {
		var z types.TeamZone
		if err := rows.Scan(&z.TeamID, &z.BuildingID); err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// TeamSkillPGStore persists team skill possession.
type TeamSkillPGStore struct {
	pool pgBeginner
}

func NewTeamSkillPGStore(pool pgBeginner) *TeamSkillPGStore {
	return &TeamSkillPGStore{pool: pool}
}

func (s *TeamSkillPGStore) Upsert(ctx context.Context, teamID string, skillID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, `
INSERT INTO competency.team_skills (team_uuid, skill_id)
VALUES ($1::uuid, $2)
ON CONFLICT (team_uuid, skill_id) DO NOTHING
`, teamID, skillID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *TeamSkillPGStore) Delete(ctx context.Context, teamID string, skillID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, `
DELETE FROM competency.team_skills WHERE team_uuid = $1::uuid AND skill_id = $2
`, teamID, skillID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *TeamSkillPGStore) HasSkill(ctx context.Context, teamID string, skillID string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var one int
	if err := tx.QueryRow(ctx, `
SELECT 1 FROM competency.team_skills WHERE team_uuid = $1::uuid AND skill_id = $2
`, teamID, skillID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *TeamSkillPGStore) ListByTeam(ctx context.Context, teamID string) ([]types.TeamSkill, error) {
	return s.list(ctx, `
SELECT team_uuid::text, skill_id
FROM competency.team_skills
WHERE team_uuid = $1::uuid
ORDER BY skill_id ASC
`, teamID)
}

func (s *TeamSkillPGStore) ListTeamsBySkill(ctx context.Context, skillID string) ([]types.TeamSkill, error) {
	return s.list(ctx, `
SELECT team_uuid::text, skill_id
FROM competency.team_skills
WHERE skill_id = $1
ORDER BY team_uuid ASC
`, skillID)
}

func (s *TeamSkillPGStore) list(ctx context.Context, query string, arg string) ([]types.TeamSkill, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.TeamSkill, 0)
	for rows.Next() {
		var sk types.TeamSkill
		if err := rows.Scan(&sk.TeamID, &sk.SkillID); err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// CompetencyMatrixPGStore persists the competency matrix. The uniqueness
// tuple (contract_version, team, category, building, time_window) is enforced
// by a unique expression index that folds NULL building_uuid to the empty
// string; Upsert replaces level in place on collision.
type CompetencyMatrixPGStore struct {
	pool pgBeginner
}

func NewCompetencyMatrixPGStore(pool pgBeginner) *CompetencyMatrixPGStore {
	return &CompetencyMatrixPGStore{pool: pool}
}

const competencySelectColumns = `
record_uuid::text, contract_version_uuid::text, team_uuid::text, category_id,
COALESCE(building_uuid::text, ''), level, time_window
`

func (s *CompetencyMatrixPGStore) Upsert(ctx context.Context, record types.CompetencyRecord) (types.CompetencyRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.CompetencyRecord{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var out types.CompetencyRecord
	var level, window string
	if err := tx.QueryRow(ctx, `
INSERT INTO competency.matrix (record_uuid, contract_version_uuid, team_uuid, category_id, building_uuid, level, time_window)
VALUES ($1::uuid, $2::uuid, $3::uuid, $4, NULLIF($5, '')::uuid, $6, $7)
ON CONFLICT (contract_version_uuid, team_uuid, category_id, COALESCE(building_uuid::text, ''), time_window)
DO UPDATE SET level = EXCLUDED.level
RETURNING `+competencySelectColumns+`
`, record.ID, record.ContractVersionID, record.TeamID, record.CategoryID, record.BuildingID,
		string(record.Level), string(record.Window)).Scan(
		&out.ID, &out.ContractVersionID, &out.TeamID, &out.CategoryID, &out.BuildingID, &level, &window); err != nil {
		return types.CompetencyRecord{}, err
	}
	out.Level = types.CompetencyLevel(level)
	out.Window = types.TimeWindow(window)

	if err := tx.Commit(ctx); err != nil {
		return types.CompetencyRecord{}, err
	}
	return out, nil
}

func (s *CompetencyMatrixPGStore) DeleteByKey(ctx context.Context, key types.CompetencyKey) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, `
DELETE FROM competency.matrix
WHERE contract_version_uuid = $1::uuid
  AND team_uuid = $2::uuid
  AND category_id = $3
  AND COALESCE(building_uuid::text, '') = $4
  AND time_window = $5
`, key.ContractVersionID, key.TeamID, key.CategoryID, key.BuildingID, string(key.Window)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *CompetencyMatrixPGStore) Find(ctx context.Context, key types.CompetencyKey) (types.CompetencyRecord, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.CompetencyRecord{}, false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var out types.CompetencyRecord
	var level, window string
	if err := tx.QueryRow(ctx, `
SELECT `+competencySelectColumns+`
FROM competency.matrix
WHERE contract_version_uuid = $1::uuid
  AND team_uuid = $2::uuid
  AND category_id = $3
  AND COALESCE(building_uuid::text, '') = $4
  AND time_window = $5
`, key.ContractVersionID, key.TeamID, key.CategoryID, key.BuildingID, string(key.Window)).Scan(
		&out.ID, &out.ContractVersionID, &out.TeamID, &out.CategoryID, &out.BuildingID, &level, &window); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.CompetencyRecord{}, false, nil
		}
		return types.CompetencyRecord{}, false, err
	}
	out.Level = types.CompetencyLevel(level)
	out.Window = types.TimeWindow(window)

	if err := tx.Commit(ctx); err != nil {
		return types.CompetencyRecord{}, false, err
	}
	return out, true, nil
}

func (s *CompetencyMatrixPGStore) ListByContractVersion(ctx context.Context, contractVersionID string) ([]types.CompetencyRecord, error) {
	return s.list(ctx, `
SELECT `+competencySelectColumns+`
FROM competency.matrix
WHERE contract_version_uuid = $1::uuid
ORDER BY record_uuid ASC
`, contractVersionID)
}

func (s *CompetencyMatrixPGStore) ListByContractVersionAndCategory(ctx context.Context, contractVersionID string, categoryID string) ([]types.CompetencyRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT `+competencySelectColumns+`
FROM competency.matrix
WHERE contract_version_uuid = $1::uuid AND category_id = $2
ORDER BY record_uuid ASC
`, contractVersionID, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out, err := scanCompetencyRows(rows)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CompetencyMatrixPGStore) ListByTeam(ctx context.Context, teamID string) ([]types.CompetencyRecord, error) {
	return s.list(ctx, `
SELECT `+competencySelectColumns+`
FROM competency.matrix
WHERE team_uuid = $1::uuid
ORDER BY record_uuid ASC
`, teamID)
}

func (s *CompetencyMatrixPGStore) ListByCategory(ctx context.Context, categoryID string) ([]types.CompetencyRecord, error) {
	return s.list(ctx, `
SELECT `+competencySelectColumns+`
FROM competency.matrix
WHERE category_id = $1
ORDER BY record_uuid ASC
`, categoryID)
}

func (s *CompetencyMatrixPGStore) list(ctx context.Context, query string, arg string) ([]types.CompetencyRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out, err := scanCompetencyRows(rows)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func scanCompetencyRows(rows pgx.Rows) ([]types.CompetencyRecord, error) {
	out := make([]types.CompetencyRecord, 0)
	for rows.Next() {
		var r types.CompetencyRecord
		var level, window string
		if err := rows.Scan(&r.ID, &r.ContractVersionID, &r.TeamID, &r.CategoryID, &r.BuildingID, &level, &window); err != nil {
			return nil, err
		}
		r.Level = types.CompetencyLevel(level)
		r.Window = types.TimeWindow(window)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
