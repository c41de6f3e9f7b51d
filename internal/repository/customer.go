package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/umalmyha/customers-mvc/internal/model"
	"github.com/umalmyha/customers-mvc/pkg/db/transactor"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoCustomersDatabase   = "customers"
	mongoCustomersCollection = "customers"
	mongoCountersCollection  = "counters"
)

// CustomerRepository represents behavior of customer data source
type CustomerRepository interface {
	FindByID(context.Context, int64) (*model.Customer, error)
	FindAll(context.Context) ([]*model.Customer, error)
	Create(context.Context, *model.Customer) error
	Update(context.Context, *model.Customer) (bool, error)
	DeleteByID(context.Context, int64) error
}

type postgresCustomerRepository struct {
	executor transactor.PgxWithinTransactionExecutor
}

// NewPostgresCustomerRepository builds postgres customer repository
func NewPostgresCustomerRepository(e transactor.PgxWithinTransactionExecutor) CustomerRepository {
	return &postgresCustomerRepository{executor: e}
}

func (r *postgresCustomerRepository) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	q := "SELECT id, first_name, last_name, email FROM customers WHERE id = $1"

	var c model.Customer
	row := r.executor.Executor(ctx).QueryRow(ctx, q, id)
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresCustomerRepository) FindAll(ctx context.Context) ([]*model.Customer, error) {
	q := "SELECT id, first_name, last_name, email FROM customers ORDER BY id"

	rows, err := r.executor.Executor(ctx).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]*model.Customer, 0)
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email); err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

// Create inserts customer, new identifier is written back to customer if it wasn't provided
func (r *postgresCustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	if !c.IsNew() {
		q := `INSERT INTO customers(id, first_name, last_name, email) VALUES($1, $2, $3, $4)`
		if _, err := r.executor.Executor(ctx).Exec(ctx, q, c.ID, c.FirstName, c.LastName, c.Email); err != nil {
			return err
		}
		return r.adjustSequence(ctx)
	}

	q := `INSERT INTO customers(first_name, last_name, email) VALUES($1, $2, $3) RETURNING id`
	return r.executor.Executor(ctx).QueryRow(ctx, q, c.FirstName, c.LastName, c.Email).Scan(&c.ID)
}

func (r *postgresCustomerRepository) Update(ctx context.Context, c *model.Customer) (bool, error) {
	q := `UPDATE customers SET first_name = $1, last_name = $2, email = $3 WHERE id = $4`
	comm, err := r.executor.Executor(ctx).Exec(ctx, q, c.FirstName, c.LastName, c.Email, c.ID)
	if err != nil {
		return false, err
	}
	return comm.RowsAffected() > 0, nil
}

func (r *postgresCustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	q := "DELETE FROM customers WHERE id = $1"
	if _, err := r.executor.Executor(ctx).Exec(ctx, q, id); err != nil {
		return err
	}
	return nil
}

// adjustSequence moves identity sequence past explicitly inserted identifiers
func (r *postgresCustomerRepository) adjustSequence(ctx context.Context) error {
	q := `SELECT setval(pg_get_serial_sequence('customers', 'id'), GREATEST((SELECT MAX(id) FROM customers), 1))`
	_, err := r.executor.Executor(ctx).Exec(ctx, q)
	return err
}

type mongoCustomerRepository struct {
	client *mongo.Client
}

// NewMongoCustomerRepository builds mongo customer repository
func NewMongoCustomerRepository(client *mongo.Client) CustomerRepository {
	return &mongoCustomerRepository{client: client}
}

func (r *mongoCustomerRepository) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	var c model.Customer
	if err := r.customers().FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *mongoCustomerRepository) FindAll(ctx context.Context) ([]*model.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.customers().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	customers := make([]*model.Customer, 0)
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// Create inserts customer, identifiers are allocated from counters collection
func (r *mongoCustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	if c.IsNew() {
		id, err := r.nextID(ctx)
		if err != nil {
			return err
		}
		c.ID = id
	} else if err := r.raiseCounter(ctx, c.ID); err != nil {
		return err
	}

	if _, err := r.customers().InsertOne(ctx, c); err != nil {
		return err
	}
	return nil
}

func (r *mongoCustomerRepository) Update(ctx context.Context, c *model.Customer) (bool, error) {
	res, err := r.customers().ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *mongoCustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.customers().DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return err
	}
	return nil
}

func (r *mongoCustomerRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	if err := r.counters().FindOneAndUpdate(ctx, bson.M{"_id": mongoCustomersCollection}, update, opts).Decode(&counter); err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (r *mongoCustomerRepository) raiseCounter(ctx context.Context, id int64) error {
	opts := options.Update().SetUpsert(true)
	update := bson.M{"$max": bson.M{"seq": id}}
	_, err := r.counters().UpdateOne(ctx, bson.M{"_id": mongoCustomersCollection}, update, opts)
	return err
}

func (r *mongoCustomerRepository) customers() *mongo.Collection {
	return r.client.Database(mongoCustomersDatabase).Collection(mongoCustomersCollection)
}

func (r *mongoCustomerRepository) counters() *mongo.Collection {
	return r.client.Database(mongoCustomersDatabase).Collection(mongoCountersCollection)
}
