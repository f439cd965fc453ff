package utils

import (
	"context"
	"reflect"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
)

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

// get type name of struct
func GetType(i interface{}) string {
	return reflect.TypeOf(i).Name()
}

/* Redis */

func listKey[T any](scope string) string {
	if scope == "" {
		return GetTypeName[T]() + "List"
	}
	return GetTypeName[T]() + "List:" + scope
}

// every cached key of a type is tracked in this set so a mutation can drop them all
func keySetName[T any]() string {
	return GetTypeName[T]() + "Keys"
}

// store a list, TypeList:$scope
func StoreRedisList[T any](ctx context.Context, obj []T, scope string) error {
	key := listKey[T](scope)
	if err := config.SetRedisObject(ctx, key, &obj, config.CacheLifespan()); err != nil {
		return err
	}
	return config.AddRedisSet(ctx, keySetName[T](), key)
}

// retrieve a list.
// scope can be empty, ok is false when nothing is cached
func RetrieveRedisList[T any](ctx context.Context, scope string) ([]T, bool, error) {
	var result []T
	exists, err := config.GetRedisObject(ctx, listKey[T](scope), &result)
	if err != nil || !exists {
		return nil, false, err
	}
	return result, true, nil
}

// store a single object, Type:$scope
func StoreRedisObject[T any](ctx context.Context, obj *T, scope string) error {
	key := GetTypeName[T]() + ":" + scope
	if err := config.SetRedisObject(ctx, key, obj, config.CacheLifespan()); err != nil {
		return err
	}
	return config.AddRedisSet(ctx, keySetName[T](), key)
}

func RetrieveRedisObject[T any](ctx context.Context, scope string) (*T, error) {
	var result *T
	exists, err := config.GetRedisObject(ctx, GetTypeName[T]()+":"+scope, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// clear every cached key of T, whatever its scope
func RemoveRedisType[T any](ctx context.Context) error {
	setKey := keySetName[T]()
	keys, err := config.GetRedisSetMembers(ctx, setKey)
	if err != nil {
		return err
	}
	return config.RemoveRedisKey(ctx, append(keys, setKey)...)
}
