package sqlinline

const QInsertGenerationJob = `--sql d952f25d-0443-47ef-b8f6-8f62d2fb34d1
insert into generation_jobs(category_id, status, request_data, error_message, created_at, updated_at)
values ($1::bigint, $2::text, $3::jsonb, nullif($4::text, ''), now(), now())
returning id, created_at, updated_at;
`

const QUpdateGenerationJobStatus = `--sql d02e3332-e851-48c6-a526-d8aefdec274c
update generation_jobs
set status = $2::text,
    error_message = nullif($3::text, ''),
    updated_at = now()
where id = $1::bigint;
`

const QSelectGenerationJobByID = `--sql 6bf700e5-53aa-418b-8dde-88e99f42da1b
select
  j.id,
  j.category_id,
  j.status,
  j.request_data,
  coalesce(j.error_message, ''),
  j.created_at,
  j.updated_at,
  c.name
from generation_jobs j
join categories c on c.id = j.category_id
where j.id = $1::bigint
limit 1;
`
