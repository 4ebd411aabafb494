package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"hrms/internal/platform/crypto"
	"hrms/internal/platform/querier"
)

type Store struct {
	DB     querier.Querier
	Cipher *crypto.Cipher
}

func NewStore(db querier.Querier, cipher *crypto.Cipher) *Store {
	return &Store{DB: db, Cipher: cipher}
}

const employeeColumns = `
    c.id, COALESCE(c.user_id::text, ''), c.name, COALESCE(c.full_name, ''), COALESCE(c.employee_no, ''),
    c.nric_enc, COALESCE(c.gender, ''), COALESCE(c.race, ''), COALESCE(c.nationality, ''),
    c.date_of_birth, c.pr_start_date, c.pr_year, c.hire_date, c.termination_date,
    COALESCE(c.job_title, ''), c.is_active, c.pay_mode,
    COALESCE(c.bank_name, ''), COALESCE(c.bank_code, ''), COALESCE(c.branch_code, ''), c.bank_account_enc,
    cc.basic_salary, c.created_at, c.updated_at
`

const employeeFrom = `
    FROM crews c
    LEFT JOIN crew_compensation cc ON cc.crew_id = c.id AND cc.is_active
`

func (s *Store) scan(row pgx.Row) (Employee, error) {
	var emp Employee
	var nricEnc, accountEnc []byte
	var salary decimal.NullDecimal
	if err := row.Scan(
		&emp.ID, &emp.UserID, &emp.Name, &emp.FullName, &emp.EmployeeNo,
		&nricEnc, &emp.Gender, &emp.Race, &emp.Nationality,
		&emp.DateOfBirth, &emp.PRStartDate, &emp.PRYear, &emp.HireDate, &emp.TerminationDate,
		&emp.JobTitle, &emp.IsActive, &emp.PayMode,
		&emp.BankName, &emp.BankCode, &emp.BranchCode, &accountEnc,
		&salary, &emp.CreatedAt, &emp.UpdatedAt,
	); err != nil {
		return Employee{}, err
	}
	var err error
	if emp.NRIC, err = s.Cipher.OpenString(nricEnc); err != nil {
		return Employee{}, fmt.Errorf("open nric: %w", err)
	}
	if emp.BankAccountNo, err = s.Cipher.OpenString(accountEnc); err != nil {
		return Employee{}, fmt.Errorf("open bank account: %w", err)
	}
	if salary.Valid {
		emp.BasicSalary = &salary.Decimal
	}
	return emp, nil
}

func (s *Store) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `SELECT`+employeeColumns+employeeFrom+`ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) get(ctx context.Context, where string, arg any) (Employee, error) {
	emp, err := s.scan(s.DB.QueryRow(ctx, `SELECT`+employeeColumns+employeeFrom+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	return s.get(ctx, "WHERE c.id = $1", id)
}

func (s *Store) GetByUserID(ctx context.Context, userID string) (Employee, error) {
	return s.get(ctx, "WHERE c.user_id = $1", userID)
}

func (s *Store) sealed(in Input) ([]byte, []byte, error) {
	nric, err := s.Cipher.SealString(in.NRIC)
	if err != nil {
		return nil, nil, fmt.Errorf("seal nric: %w", err)
	}
	account, err := s.Cipher.SealString(in.BankAccountNo)
	if err != nil {
		return nil, nil, fmt.Errorf("seal bank account: %w", err)
	}
	return nric, account, nil
}

func (s *Store) Create(ctx context.Context, in Input) (Employee, error) {
	nric, account, err := s.sealed(in)
	if err != nil {
		return Employee{}, err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO crews (user_id, name, full_name, employee_no, nric_enc, gender, race, nationality,
                       date_of_birth, pr_start_date, pr_year, hire_date, termination_date, job_title,
                       is_active, pay_mode, bank_name, bank_code, branch_code, bank_account_enc)
    VALUES (NULLIF($1,'')::uuid, $2, NULLIF($3,''), NULLIF($4,''), $5, NULLIF($6,''), NULLIF($7,''), NULLIF($8,''),
            $9, $10, $11, $12, $13, NULLIF($14,''),
            $15, $16, NULLIF($17,''), NULLIF($18,''), NULLIF($19,''), $20)
    RETURNING id
  `, in.UserID, in.Name, in.FullName, in.EmployeeNo, nric, in.Gender, in.Race, in.Nationality,
		in.DateOfBirth, in.PRStartDate, in.PRYear, in.HireDate, in.TerminationDate, in.JobTitle,
		in.IsActive, in.PayMode, in.BankName, in.BankCode, in.BranchCode, account).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Employee{}, ErrUserLinked
		}
		return Employee{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Update(ctx context.Context, id string, in Input) (Employee, error) {
	nric, account, err := s.sealed(in)
	if err != nil {
		return Employee{}, err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE crews
    SET name = $2, full_name = NULLIF($3,''), employee_no = NULLIF($4,''), nric_enc = $5,
        gender = NULLIF($6,''), race = NULLIF($7,''), nationality = NULLIF($8,''),
        date_of_birth = $9, pr_start_date = $10, pr_year = $11, hire_date = $12, termination_date = $13,
        job_title = NULLIF($14,''), is_active = $15, pay_mode = $16,
        bank_name = NULLIF($17,''), bank_code = NULLIF($18,''), branch_code = NULLIF($19,''), bank_account_enc = $20,
        updated_at = now()
    WHERE id = $1
  `, id, in.Name, in.FullName, in.EmployeeNo, nric, in.Gender, in.Race, in.Nationality,
		in.DateOfBirth, in.PRStartDate, in.PRYear, in.HireDate, in.TerminationDate, in.JobTitle,
		in.IsActive, in.PayMode, in.BankName, in.BankCode, in.BranchCode, account)
	if err != nil {
		return Employee{}, err
	}
	if tag.RowsAffected() == 0 {
		return Employee{}, ErrNotFound
	}
	return s.Get(ctx, id)
}
