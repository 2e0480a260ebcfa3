// Package mongostore implements store.Store on MongoDB. The layout follows
// the shop's historical database: fixed Cash, Inventory and Miscellaneous
// collections plus one collection per customer holding that customer's
// ledger. A Customers collection keeps the directory because collection
// listing is not allowed inside a transaction.
package mongostore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

const (
	colCash      = "Cash"
	colInventory = "Inventory"
	colMisc      = "Miscellaneous"
	colCustomers = "Customers"
	colUsers     = "Users"
	colAudit     = "AuditLogs"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
	inTx         bool
	log          *logrus.Logger
}

// New returns a store on the named database. With transactions disabled
// (standalone mongod) WithTx runs its writes one after another.
func New(client *mongo.Client, database string, transactions bool, log *logrus.Logger) *Store {
	if !transactions {
		log.Warn("mongostore: transactions disabled, multi-document writes are not atomic")
	}
	return &Store{
		client:       client,
		db:           client.Database(database),
		transactions: transactions,
		log:          log,
	}
}

func (s *Store) col(name string) *mongo.Collection { return s.db.Collection(name) }

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func wrap(op, what string, err error) error {
	switch {
	case err == nil:
		return nil
	case isNoDocuments(err):
		return apperr.NotFound(what)
	case mongo.IsDuplicateKeyError(err):
		return apperr.Conflict(what + " already exists")
	}
	return apperr.Storage("mongostore: "+op, err)
}

func stamp(id *string, created, updated *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := time.Now().UTC()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

var byDate = bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}}

func findAll[D any, M any](ctx context.Context, c *mongo.Collection, filter any, opts *options.FindOptionsBuilder, conv func(*D) M) ([]M, error) {
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]M, 0, len(docs))
	for i := range docs {
		out = append(out, conv(&docs[i]))
	}
	return out, nil
}

// WithTx runs fn inside a session transaction. The callback is not retried
// on transient errors; the caller decides.
func (s *Store) WithTx(ctx context.Context, fn store.TxFunc) error {
	if !s.transactions || s.inTx {
		return fn(ctx, s)
	}
	sess, err := s.client.StartSession()
	if err != nil {
		return apperr.Storage("mongostore: start session", err)
	}
	defer sess.EndSession(context.Background())

	if err := sess.StartTransaction(); err != nil {
		return apperr.Storage("mongostore: start transaction", err)
	}
	sc := mongo.NewSessionContext(ctx, sess)
	child := &Store{client: s.client, db: s.db, transactions: true, inTx: true, log: s.log}
	if err := fn(sc, child); err != nil {
		if abortErr := sess.AbortTransaction(context.Background()); abortErr != nil {
			s.log.WithError(abortErr).Warn("mongostore: abort transaction")
		}
		return err
	}
	if err := sess.CommitTransaction(sc); err != nil {
		return apperr.Storage("mongostore: commit", err)
	}
	return nil
}

// ==================== Cash ====================

func (s *Store) ListCashEntries(ctx context.Context) ([]models.CashEntry, error) {
	out, err := findAll(ctx, s.col(colCash), bson.M{}, options.Find().SetSort(byDate), fromCashDoc)
	if err != nil {
		return nil, wrap("list cash entries", "cash entry", err)
	}
	return out, nil
}

func (s *Store) getCash(ctx context.Context, filter bson.M, op string) (*models.CashEntry, error) {
	var d cashDoc
	if err := s.col(colCash).FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, wrap(op, "cash entry", err)
	}
	e := fromCashDoc(&d)
	return &e, nil
}

func (s *Store) GetCashEntry(ctx context.Context, id string) (*models.CashEntry, error) {
	return s.getCash(ctx, idFilter(id), "get cash entry")
}

func (s *Store) FindCashEntryBySource(ctx context.Context, source models.CashSource, sourceID string) (*models.CashEntry, error) {
	return s.getCash(ctx, bson.M{"source": string(source), "source_id": sourceID}, "find cash entry by source")
}

func (s *Store) CreateCashEntry(ctx context.Context, e *models.CashEntry) error {
	stamp(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if e.Source == "" {
		e.Source = models.CashSourceManual
	}
	_, err := s.col(colCash).InsertOne(ctx, toCashDoc(e))
	return wrap("create cash entry", "cash entry", err)
}

func (s *Store) UpdateCashEntry(ctx context.Context, e *models.CashEntry) error {
	e.UpdatedAt = time.Now().UTC()
	d := toCashDoc(e)
	res, err := s.col(colCash).UpdateOne(ctx, idFilter(e.ID), bson.M{"$set": bson.M{
		"date":            d.Date,
		"type":            d.Type,
		"amount":          d.Amount,
		"remarks":         d.Remarks,
		"source":          d.Source,
		"source_id":       d.SourceID,
		"source_customer": d.SourceCustomer,
		"updated_at":      d.UpdatedAt,
	}})
	if err != nil {
		return wrap("update cash entry", "cash entry", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("cash entry")
	}
	return nil
}

func (s *Store) deleteOne(ctx context.Context, col string, filter bson.M, op, what string) error {
	res, err := s.col(col).DeleteOne(ctx, filter)
	if err != nil {
		return wrap(op, what, err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(what)
	}
	return nil
}

func (s *Store) DeleteCashEntry(ctx context.Context, id string) error {
	return s.deleteOne(ctx, colCash, idFilter(id), "delete cash entry", "cash entry")
}

// ==================== Inventory ====================

func (s *Store) ListInventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	out, err := findAll(ctx, s.col(colInventory), bson.M{}, opts, fromItemDoc)
	if err != nil {
		return nil, wrap("list inventory", "inventory item", err)
	}
	return out, nil
}

func (s *Store) getItem(ctx context.Context, filter bson.M, op string) (*models.InventoryItem, error) {
	var d itemDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if err := s.col(colInventory).FindOne(ctx, filter, opts).Decode(&d); err != nil {
		return nil, wrap(op, "inventory item", err)
	}
	it := fromItemDoc(&d)
	return &it, nil
}

func (s *Store) GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	return s.getItem(ctx, idFilter(id), "get inventory item")
}

func (s *Store) GetInventoryItemByName(ctx context.Context, itemName string) (*models.InventoryItem, error) {
	return s.getItem(ctx, bson.M{"item_name": itemName}, "get inventory item by name")
}

func (s *Store) CreateInventoryItem(ctx context.Context, it *models.InventoryItem) error {
	stamp(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	_, err := s.col(colInventory).InsertOne(ctx, toItemDoc(it))
	return wrap("create inventory item", "inventory item", err)
}

func (s *Store) DeleteInventoryItem(ctx context.Context, id string) error {
	return s.deleteOne(ctx, colInventory, idFilter(id), "delete inventory item", "inventory item")
}

// AdjustInventory $inc ile sunucu tarafında değeri düşürür.
func (s *Store) AdjustInventory(ctx context.Context, itemName string, valueSold, quantitySold decimal.Decimal) error {
	it, err := s.GetInventoryItemByName(ctx, itemName)
	if err != nil {
		return err
	}
	res, err := s.col(colInventory).UpdateOne(ctx, idFilter(it.ID), bson.M{
		"$inc": bson.M{
			"value":      toD128(valueSold.Neg()),
			"units_sold": toD128(quantitySold),
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return wrap("adjust inventory", "inventory item", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("inventory item")
	}
	return nil
}

// ==================== Customers ====================

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	out, err := findAll(ctx, s.col(colCustomers), bson.M{}, opts, func(d *customerDoc) models.Customer {
		return models.Customer{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt}
	})
	if err != nil {
		return nil, wrap("list customers", "customer", err)
	}
	return out, nil
}

func (s *Store) GetCustomer(ctx context.Context, name string) (*models.Customer, error) {
	var d customerDoc
	if err := s.col(colCustomers).FindOne(ctx, bson.M{"name": name}).Decode(&d); err != nil {
		return nil, wrap("get customer", "customer", err)
	}
	return &models.Customer{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt}, nil
}

// CreateCustomer registers the name in the directory. The ledger collection
// itself is created lazily by the first insert.
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	stamp(&c.ID, &c.CreatedAt, nil)
	_, err := s.col(colCustomers).InsertOne(ctx, customerDoc{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt})
	return wrap("create customer", "customer", err)
}

func (s *Store) ListCustomerEntries(ctx context.Context, customer string) ([]models.CustomerEntry, error) {
	out, err := findAll(ctx, s.col(customer), bson.M{}, options.Find().SetSort(byDate), func(d *entryDoc) models.CustomerEntry {
		return fromEntryDoc(customer, d)
	})
	if err != nil {
		return nil, wrap("list customer entries", "transaction", err)
	}
	return out, nil
}

func (s *Store) ListEntriesByItem(ctx context.Context, itemName string) ([]models.CustomerEntry, error) {
	customers, err := s.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.CustomerEntry
	for _, c := range customers {
		name := c.Name
		entries, err := findAll(ctx, s.col(name), bson.M{"item_name": itemName}, options.Find().SetSort(byDate), func(d *entryDoc) models.CustomerEntry {
			return fromEntryDoc(name, d)
		})
		if err != nil {
			return nil, wrap("list entries by item", "transaction", err)
		}
		out = append(out, entries...)
	}
	return out, nil
}

func (s *Store) GetCustomerEntry(ctx context.Context, customer, id string) (*models.CustomerEntry, error) {
	var d entryDoc
	if err := s.col(customer).FindOne(ctx, idFilter(id)).Decode(&d); err != nil {
		return nil, wrap("get customer entry", "transaction", err)
	}
	e := fromEntryDoc(customer, &d)
	return &e, nil
}

func (s *Store) CreateCustomerEntry(ctx context.Context, e *models.CustomerEntry) error {
	if _, err := s.GetCustomer(ctx, e.CustomerName); err != nil {
		return err
	}
	stamp(&e.ID, &e.CreatedAt, nil)
	_, err := s.col(e.CustomerName).InsertOne(ctx, toEntryDoc(e))
	return wrap("create customer entry", "transaction", err)
}

func (s *Store) DeleteCustomerEntry(ctx context.Context, customer, id string) error {
	return s.deleteOne(ctx, customer, idFilter(id), "delete customer entry", "transaction")
}

// ==================== Miscellaneous ====================

func (s *Store) ListMiscEntries(ctx context.Context) ([]models.MiscEntry, error) {
	out, err := findAll(ctx, s.col(colMisc), bson.M{}, options.Find().SetSort(byDate), fromMiscDoc)
	if err != nil {
		return nil, wrap("list misc entries", "miscellaneous entry", err)
	}
	return out, nil
}

func (s *Store) GetMiscEntry(ctx context.Context, id string) (*models.MiscEntry, error) {
	var d miscDoc
	if err := s.col(colMisc).FindOne(ctx, idFilter(id)).Decode(&d); err != nil {
		return nil, wrap("get misc entry", "miscellaneous entry", err)
	}
	e := fromMiscDoc(&d)
	return &e, nil
}

func (s *Store) CreateMiscEntry(ctx context.Context, e *models.MiscEntry) error {
	stamp(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	_, err := s.col(colMisc).InsertOne(ctx, toMiscDoc(e))
	return wrap("create misc entry", "miscellaneous entry", err)
}

func (s *Store) UpdateMiscEntry(ctx context.Context, e *models.MiscEntry) error {
	e.UpdatedAt = time.Now().UTC()
	d := toMiscDoc(e)
	res, err := s.col(colMisc).UpdateOne(ctx, idFilter(e.ID), bson.M{"$set": bson.M{
		"date":       d.Date,
		"type":       d.Type,
		"amount":     d.Amount,
		"remarks":    d.Remarks,
		"updated_at": d.UpdatedAt,
	}})
	if err != nil {
		return wrap("update misc entry", "miscellaneous entry", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("miscellaneous entry")
	}
	return nil
}

func (s *Store) DeleteMiscEntry(ctx context.Context, id string) error {
	return s.deleteOne(ctx, colMisc, idFilter(id), "delete misc entry", "miscellaneous entry")
}

// ==================== Audit ====================

func (s *Store) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	stamp(&l.ID, &l.CreatedAt, nil)
	_, err := s.col(colAudit).InsertOne(ctx, toAuditDoc(l))
	return wrap("create audit log", "audit log", err)
}

func (s *Store) ListAuditLogs(ctx context.Context, f store.AuditFilter) ([]models.AuditLog, error) {
	filter := bson.M{}
	if f.EntityType != "" {
		filter["entity_type"] = f.EntityType
	}
	if f.EntityID != "" {
		filter["entity_id"] = f.EntityID
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	out, err := findAll(ctx, s.col(colAudit), filter, opts, fromAuditDoc)
	if err != nil {
		return nil, wrap("list audit logs", "audit log", err)
	}
	return out, nil
}

// ==================== Users ====================

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	_, err := s.col(colUsers).InsertOne(ctx, toUserDoc(u))
	return wrap("create user", "user", err)
}

func (s *Store) getUser(ctx context.Context, filter bson.M, op string) (*models.User, error) {
	var d userDoc
	if err := s.col(colUsers).FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, wrap(op, "user", err)
	}
	u := fromUserDoc(&d)
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, bson.M{"_id": id}, "get user")
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, bson.M{"email": email}, "get user by email")
}

func (s *Store) CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error) {
	n, err := s.col(colUsers).CountDocuments(ctx, bson.M{"role": string(role)})
	if err != nil {
		return 0, wrap("count users", "user", err)
	}
	return n, nil
}

// ==================== Lifecycle ====================

// Migrate creates the unique indexes and registers customer collections
// that predate the directory.
func (s *Store) Migrate(ctx context.Context) error {
	unique := func(col, field string) error {
		_, err := s.col(col).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		return err
	}
	if err := unique(colCustomers, "name"); err != nil {
		return apperr.Storage("mongostore: customers index", err)
	}
	if err := unique(colUsers, "email"); err != nil {
		return apperr.Storage("mongostore: users index", err)
	}

	names, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return apperr.Storage("mongostore: list collections", err)
	}
	for _, name := range names {
		if models.IsReservedScopeName(name) || strings.HasPrefix(name, "system.") {
			continue
		}
		_, err := s.GetCustomer(ctx, name)
		if err == nil {
			continue
		}
		if !apperr.IsNotFound(err) {
			return err
		}
		if err := s.CreateCustomer(ctx, &models.Customer{Name: name}); err != nil {
			return err
		}
		s.log.WithField("customer", name).Info("mongostore: registered existing customer collection")
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return apperr.Storage("mongostore: ping", s.client.Ping(ctx, nil))
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
